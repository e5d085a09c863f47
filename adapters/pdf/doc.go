// Package cvpdf turns rendered CV pages into PDF documents.
//
// Renderer implements cv.PDFRenderer: it renders the HTML page through an
// injected HTML renderer and converts it with a pluggable Engine
// (headless Chromium via chromedp, or the wkhtmltopdf binary).
package cvpdf
