package server

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/uiforge/internal/renderer"
	"github.com/conneroisu/uiforge/internal/types"
)

var titleCase = cases.Title(language.English)

var bubbleClasses = map[types.Role]string{
	types.RoleUser:      "bg-teal-600 text-white rounded-tr-md",
	types.RoleAssistant: "bg-white text-gray-700 border border-gray-200 rounded-tl-md",
	types.RoleSystem:    "bg-amber-50 text-amber-800 border border-amber-200",
}

// WorkspacePage renders the chat, version history and preview frame for st.
func WorkspacePage(st StateResponse) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>uiforge</title>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="h-screen w-screen flex bg-gray-100 overflow-hidden">
<div class="w-[380px] min-w-[320px] flex flex-col border-r border-gray-200 bg-white">
<div class="flex flex-col flex-1 overflow-hidden bg-gray-50">
    <div class="px-5 py-4 border-b border-gray-200 bg-white">
        <h2 class="text-base font-semibold text-gray-900">AI UI Builder</h2>
        <p class="text-xs text-gray-500 mt-0.5">Describe the UI you want to build</p>
    </div>
    <div id="messages" class="flex-1 overflow-y-auto px-4 py-4 space-y-3">
`)
	writeMessages(&b, st)
	b.WriteString(`    </div>
`)
	writeForm(&b, st.Loading)
	b.WriteString(`</div>
`)
	writeVersions(&b, st)
	b.WriteString(`</div>
<div class="flex-1 flex flex-col overflow-hidden bg-white">
`)
	writeToolbar(&b, st)
	b.WriteString(`    <iframe id="preview" src="/preview" class="flex-1 w-full border-0" title="Preview"></iframe>
</div>
`)
	b.WriteString(pageScript)
	b.WriteString(`</body>
</html>`)

	return b.String()
}

func writeMessages(b *strings.Builder, st StateResponse) {
	if len(st.Messages) == 0 {
		b.WriteString(`        <div class="flex items-center justify-center h-full text-gray-400 text-sm"><div class="text-center space-y-2">
            <p>Start by describing a UI you'd like to build.</p>
            <p class="text-xs text-gray-300">e.g. "A login page with email and password inputs"</p>
        </div></div>
`)
	}

	for _, msg := range st.Messages {
		justify := "justify-start"
		if msg.Role == types.RoleUser {
			justify = "justify-end"
		}
		fmt.Fprintf(b, `        <div class="flex %s" data-role="%s">
            <div class="max-w-[85%%] px-3.5 py-2.5 rounded-2xl text-sm leading-relaxed %s" title="%s">%s</div>
        </div>
`, justify, templ.EscapeString(string(msg.Role)), bubbleClasses[msg.Role],
			templ.EscapeString(titleCase.String(string(msg.Role))), templ.EscapeString(msg.Content))
	}

	if st.Loading {
		b.WriteString(`        <div class="flex justify-start"><div class="bg-white text-gray-500 border border-gray-200 px-4 py-3 rounded-2xl rounded-tl-md text-sm">Thinking about layout...</div></div>
`)
	}
}

func writeForm(b *strings.Builder, loading bool) {
	disabled := ""
	if loading {
		disabled = " disabled"
	}
	fmt.Fprintf(b, `    <form id="prompt-form" class="px-4 py-3 border-t border-gray-200 bg-white">
        <div class="flex items-center gap-2">
            <input id="prompt" type="text" autocomplete="off" placeholder="Describe a UI or ask for changes..."%s
                class="flex-1 px-3.5 py-2.5 bg-gray-50 border border-gray-200 rounded-xl text-sm text-gray-900 disabled:opacity-50">
            <button type="submit"%s class="px-3 py-2.5 bg-teal-600 text-white rounded-xl text-sm disabled:opacity-40">Send</button>
        </div>
    </form>
`, disabled, disabled)
}

func writeVersions(b *strings.Builder, st StateResponse) {
	if len(st.Versions) == 0 {
		return
	}

	fmt.Fprintf(b, `<div class="flex flex-col border-t border-gray-200 bg-white">
    <div class="flex items-center justify-between px-4 py-2.5 border-b border-gray-100">
        <span class="text-xs font-semibold text-gray-500 uppercase tracking-wider">Versions (%d)</span>
        <button data-action="clear" class="text-xs text-gray-400 hover:text-red-500" title="Clear history">Clear</button>
    </div>
    <div class="overflow-y-auto max-h-40">
`, len(st.Versions))

	for i, v := range st.Versions {
		active := i == st.CurrentIndex
		row := "text-gray-600 hover:bg-gray-50"
		if active {
			row = "bg-teal-50 text-teal-700"
		}
		fmt.Fprintf(b, `        <div class="flex items-center justify-between px-4 py-2 text-xs border-b border-gray-50 %s">
            <div class="flex-1 min-w-0"><span class="font-medium">v%d</span>`, row, i+1)
		if active {
			b.WriteString(` <span class="text-[10px] bg-teal-100 text-teal-600 px-1.5 py-0.5 rounded-full font-medium">Active</span>`)
		}
		fmt.Fprintf(b, `<p class="text-gray-400 truncate mt-0.5">%s</p></div>`, templ.EscapeString(v.SourcePrompt))
		if !active {
			fmt.Fprintf(b, `<button data-action="rollback" data-index="%d" class="ml-2 p-1 text-gray-400 hover:text-teal-600" title="Rollback to this version">Restore</button>`, i)
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("    </div>\n</div>\n")
}

func writeToolbar(b *strings.Builder, st StateResponse) {
	b.WriteString(`    <div class="flex items-center justify-between px-4 py-2 border-b border-gray-200 bg-gray-50/50">
        <div class="flex items-center gap-1">
`)
	for _, m := range []renderer.Mode{renderer.ModePreview, renderer.ModeSource} {
		cls := "text-gray-500 hover:text-gray-700 hover:bg-gray-100"
		if m == st.Mode {
			cls = "bg-white text-gray-900 shadow-sm border border-gray-200"
		}
		fmt.Fprintf(b, `            <button data-action="view" data-mode="%s" class="px-3 py-1.5 text-sm font-medium rounded-lg %s">%s</button>
`, m, cls, titleCase.String(string(m)))
	}
	b.WriteString(`        </div>
`)
	if st.CurrentCode() != "" {
		label := "Copy"
		if st.Copied {
			label = "Copied!"
		}
		fmt.Fprintf(b, `        <button data-action="copy" class="px-2.5 py-1 text-xs text-gray-500 hover:text-gray-700 rounded-md hover:bg-gray-100">%s</button>
`, label)
	}
	b.WriteString(`    </div>
`)
}

const pageScript = `<script>
(function () {
    function post(path, body) {
        return fetch(path, {
            method: 'POST',
            headers: {'Content-Type': 'application/json'},
            body: JSON.stringify(body || {})
        });
    }

    document.getElementById('prompt-form').addEventListener('submit', function (e) {
        e.preventDefault();
        const input = document.getElementById('prompt');
        const prompt = input.value.trim();
        if (!prompt) return;
        input.value = '';
        post('/api/submit', {prompt: prompt});
    });

    document.body.addEventListener('click', function (e) {
        const el = e.target.closest('[data-action]');
        if (!el) return;
        switch (el.dataset.action) {
        case 'rollback':
            post('/api/rollback', {index: parseInt(el.dataset.index, 10)});
            break;
        case 'clear':
            post('/api/clear');
            break;
        case 'view':
            post('/api/view', {mode: el.dataset.mode}).then(function () { window.location.reload(); });
            break;
        case 'copy':
            post('/api/copy').then(function (r) { return r.json(); }).then(function (data) {
                if (navigator.clipboard) navigator.clipboard.writeText(data.code);
                el.textContent = 'Copied!';
                setTimeout(function () { el.textContent = 'Copy'; }, 2000);
            });
            break;
        }
    });

    const proto = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
    const ws = new WebSocket(proto + '//' + window.location.host + '/ws');
    ws.onmessage = function (event) {
        const message = JSON.parse(event.data);
        if (message.type === 'state_changed' || message.type === 'phase_changed') {
            window.location.reload();
        }
    };

    const messages = document.getElementById('messages');
    messages.scrollTop = messages.scrollHeight;
})();
</script>
`
