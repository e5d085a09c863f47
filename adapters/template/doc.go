// Package cvtemplate renders layout trees to standalone HTML pages.
//
// The visual tree produced by the layout package is converted into an
// HTML fragment with html/template, then wrapped in a page template run by
// a TemplateExecutor. The default executor uses html/template; PongoExecutor
// lets operators supply Django-style page templates through pongo2. The
// default page template name is "cv".
//
// PDF output is not produced here; see adapters/pdf.
package cvtemplate
