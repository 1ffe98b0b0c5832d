package server

import "net/http"

// playgroundHTML is a single page that converts documents over the
// WebSocket and lists broadcast events as they arrive.
const playgroundHTML = `<!DOCTYPE html>
<html>
<head>
    <title>jsregex Playground</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
        .header { background: #2c3e50; color: white; padding: 20px; border-radius: 5px; margin-bottom: 20px; }
        .grid { display: grid; grid-template-columns: 1fr 1fr; gap: 20px; }
        .card { background: white; padding: 20px; border-radius: 5px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        textarea { width: 100%; height: 320px; font-family: monospace; box-sizing: border-box; }
        .result { font-family: monospace; font-size: 1.2em; color: #2980b9; word-break: break-all; }
        .error { color: #c0392b; }
        .events-list { max-height: 420px; overflow-y: auto; }
        .event { padding: 8px; margin: 5px 0; border-left: 4px solid #3498db; background: #ecf0f1; font-size: 0.9em; }
        .event.warning { border-left-color: #f39c12; }
        .status { float: right; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="header">
        <h1>jsregex Playground</h1>
        <span class="status" id="status">connecting...</span>
        <div>Convert Ruby regex trees to JavaScript</div>
    </div>
    <div class="grid">
        <div class="card">
            <h3>Tree document (JSON)</h3>
            <textarea id="document">{
  "pattern": "(?>a+)(b)\\1",
  "root": {"kind": "sequence", "children": [
    {"kind": "group", "type": "atomic", "children": [
      {"kind": "literal", "value": "a", "quantifier": {"min": 1, "max": -1}}
    ]},
    {"kind": "group", "type": "capture", "children": [{"kind": "literal", "value": "b"}]},
    {"kind": "backreference", "number": 1}
  ]}
}</textarea>
            <p>
                <select id="target">
                    <option>ES2009</option>
                    <option>ES2015</option>
                    <option selected>ES2018</option>
                </select>
                <label><input type="checkbox" id="possessive"> emulate possessive</label>
                <button onclick="convert()">Convert</button>
            </p>
            <div class="result" id="result"></div>
            <ul id="warnings"></ul>
        </div>
        <div class="card">
            <h3>Recent events</h3>
            <div class="events-list" id="events"></div>
        </div>
    </div>
    <script>
        const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
        const status = document.getElementById('status');

        ws.onopen = function() { status.textContent = 'connected'; };
        ws.onclose = function() { status.textContent = 'disconnected'; };

        ws.onmessage = function(event) {
            const msg = JSON.parse(event.data);
            if (msg.type === 'result') {
                showResult(msg.data);
            } else if (msg.type === 'error') {
                showError(msg.error);
            } else if (msg.type === 'event') {
                addEvent(msg.data);
            }
        };

        function convert() {
            let doc;
            try {
                doc = JSON.parse(document.getElementById('document').value);
            } catch (e) {
                showError('Invalid JSON: ' + e.message);
                return;
            }
            ws.send(JSON.stringify({
                document: doc,
                target: document.getElementById('target').value,
                emulate_possessive: document.getElementById('possessive').checked
            }));
        }

        function showResult(conv) {
            const result = document.getElementById('result');
            result.className = 'result';
            result.textContent = '/' + conv.source + '/' + conv.flags;
            const list = document.getElementById('warnings');
            list.innerHTML = '';
            (conv.warnings || []).forEach(function(w) {
                const item = document.createElement('li');
                item.textContent = w.kind + ': ' + w.detail;
                list.appendChild(item);
            });
        }

        function showError(message) {
            const result = document.getElementById('result');
            result.className = 'result error';
            result.textContent = message;
            document.getElementById('warnings').innerHTML = '';
        }

        function addEvent(e) {
            const events = document.getElementById('events');
            const div = document.createElement('div');
            div.className = 'event ' + e.type;
            div.textContent = new Date(e.timestamp).toLocaleTimeString() + ' ' + e.message;
            events.insertBefore(div, events.firstChild);
            while (events.children.length > 100) {
                events.removeChild(events.lastChild);
            }
        }
    </script>
</body>
</html>
`

func (s *Server) handlePlayground(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(playgroundHTML))
}
