package renderer

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/uiforge/internal/interpreter"
)

// ErrorSurface renders a diagnostic as the inline error box shown in place
// of the preview.
func ErrorSurface(d *interpreter.Diagnostic) string {
	var b strings.Builder
	b.WriteString(`<div class="uiforge-error mt-4 p-3 bg-red-50 border border-red-200 rounded-lg text-sm text-red-700 font-mono" role="alert">`)
	b.WriteString(`<div class="font-semibold">`)
	b.WriteString(templ.EscapeString(string(d.Kind)))
	if d.OffendingTag != "" {
		b.WriteString(" &lt;")
		b.WriteString(templ.EscapeString(d.OffendingTag))
		b.WriteString("&gt;")
	}
	if d.Line > 0 {
		fmt.Fprintf(&b, " (line %d, column %d)", d.Line, d.Column)
	}
	b.WriteString(`</div><div>`)
	b.WriteString(templ.EscapeString(d.Message))
	b.WriteString(`</div></div>`)

	return b.String()
}

// SourceBlock renders code for the source view.
func SourceBlock(code string) string {
	return `<pre class="bg-gray-900 text-gray-100 rounded-xl p-4 text-sm font-mono overflow-x-auto leading-relaxed whitespace-pre-wrap">` +
		templ.EscapeString(Source(code)) + `</pre>`
}

// Body returns the HTML fragment for an outcome.
func (o Outcome) Body() string {
	switch {
	case o.Diagnostic != nil:
		return ErrorSurface(o.Diagnostic)
	case o.Mode == ModeSource:
		return SourceBlock(o.Source)
	default:
		return o.HTML
	}
}

// Page wraps a fragment in a standalone preview document. The page reloads
// when the server broadcasts a preview change over the websocket.
func Page(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>%s</title>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-white">
    <div class="p-4 min-h-full">
%s
    </div>
    <script>
        (function () {
            const proto = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
            const ws = new WebSocket(proto + '//' + window.location.host + '/ws');
            ws.onmessage = function (event) {
                const message = JSON.parse(event.data);
                if (message.type === 'preview_changed' || message.type === 'view_changed') {
                    window.location.reload();
                }
            };
        })();
    </script>
</body>
</html>`, templ.EscapeString(title), body)
}
