package cvpdf

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromiumEngine prints pages with a shared headless Chromium instance.
// Each render runs in its own tab.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string

	initOnce      sync.Once
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Render loads req.HTML into a blank tab and prints it.
func (e *ChromiumEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if e == nil {
		return nil, errors.New("chromium engine is nil")
	}
	params, err := buildPrintToPDFParams(req.Options)
	if err != nil {
		return nil, err
	}
	if err := e.ensureBrowser(); err != nil {
		return nil, fmt.Errorf("chromium init: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(e.browserCtx)
	defer cancelTab()

	// The tab hangs off the browser context; tie it to the caller too.
	execCtx, cancelReq := context.WithCancel(tabCtx)
	defer cancelReq()
	stop := context.AfterFunc(ctx, cancelReq)
	defer stop()

	if e.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, e.Timeout)
		defer cancelTimeout()
	}

	content := string(injectBaseURL(req.HTML, req.Options.BaseURL))

	var pdf []byte
	actions := []chromedp.Action{}
	if req.Options.BlockExternal {
		actions = append(actions,
			network.Enable(),
			network.SetBlockedURLs().WithURLPatterns([]*network.BlockPattern{
				{URLPattern: "http://*", Block: true},
				{URLPattern: "https://*", Block: true},
			}),
		)
	}
	actions = append(actions,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, content).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = params.Do(ctx)
			return err
		}),
	)

	if err := chromedp.Run(execCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("chromium print: %w", err)
	}
	return pdf, nil
}

// Close shuts down the browser if it was started.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	if e.browserCancel != nil {
		e.browserCancel()
	}
	if e.allocCancel != nil {
		e.allocCancel()
	}
	return nil
}

func (e *ChromiumEngine) ensureBrowser() error {
	e.initOnce.Do(func() {
		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if e.BrowserPath != "" {
			options = append(options, chromedp.ExecPath(e.BrowserPath))
		}
		options = append(options, chromedp.Flag("headless", e.Headless))
		options = append(options, allocatorFlags(e.Args)...)

		e.allocCtx, e.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		e.browserCtx, e.browserCancel = chromedp.NewContext(e.allocCtx)
	})
	if e.allocCtx == nil || e.browserCtx == nil {
		return errors.New("chromium allocator unavailable")
	}
	return nil
}

func injectBaseURL(input []byte, baseURL string) []byte {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return input
	}
	lower := strings.ToLower(string(input))
	if strings.Contains(lower, "<base") {
		return input
	}

	tag := fmt.Sprintf(`<base href="%s">`, html.EscapeString(baseURL))
	if at := afterOpenTag(lower, "<head"); at >= 0 {
		return splice(input, at, tag)
	}
	if at := afterOpenTag(lower, "<html"); at >= 0 {
		return splice(input, at, "<head>"+tag+"</head>")
	}
	return append([]byte(tag), input...)
}

func afterOpenTag(lower, tag string) int {
	start := strings.Index(lower, tag)
	if start < 0 {
		return -1
	}
	end := strings.Index(lower[start:], ">")
	if end < 0 {
		return -1
	}
	return start + end + 1
}

func splice(input []byte, at int, insert string) []byte {
	out := make([]byte, 0, len(input)+len(insert))
	out = append(out, input[:at]...)
	out = append(out, insert...)
	return append(out, input[at:]...)
}

func allocatorFlags(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimPrefix(strings.TrimSpace(arg), "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}
