package relay

import (
	"fmt"
	"log"
	"net/http"
)

// TestPageHandler serves a minimal HTML page for exercising the relay by
// hand: identify, join a conversation, send messages, watch the broadcast
// come back.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	html := `<!DOCTYPE html>
<html>
<head>
    <title>Conversation Relay Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #log { border: 1px solid #ccc; height: 300px; padding: 10px; overflow-y: scroll; margin: 10px 0; background: #f9f9f9; }
        input { padding: 5px; margin-right: 6px; }
        button { padding: 5px 12px; }
    </style>
</head>
<body>
    <h1>Conversation Relay Test</h1>
    <div>
        <input id="userId" placeholder="user id" value="tester">
        <input id="channelId" placeholder="channel id" value="room1">
        <button onclick="connect()">Connect &amp; join</button>
    </div>
    <div>
        <input id="content" placeholder="message" size="40">
        <button onclick="send()">Send</button>
    </div>
    <div id="log"></div>
    <script>
        let ws = null;
        function logLine(text) {
            const div = document.createElement('div');
            div.textContent = text;
            const log = document.getElementById('log');
            log.appendChild(div);
            log.scrollTop = log.scrollHeight;
        }
        function connect() {
            ws = new WebSocket('ws://' + location.host + '/ws');
            ws.onopen = function() {
                logLine('connected');
                ws.send(JSON.stringify({event: 'join', userId: document.getElementById('userId').value}));
                ws.send(JSON.stringify({event: 'join_conversation', channelId: document.getElementById('channelId').value}));
            };
            ws.onmessage = function(e) { logLine(e.data); };
            ws.onclose = function() { logLine('closed'); ws = null; };
        }
        function send() {
            if (!ws || ws.readyState !== WebSocket.OPEN) { logLine('not connected'); return; }
            ws.send(JSON.stringify({
                event: 'send_message',
                channelId: document.getElementById('channelId').value,
                content: document.getElementById('content').value,
                messageType: 'text'
            }));
            document.getElementById('content').value = '';
        }
    </script>
</body>
</html>`
	if _, err := fmt.Fprint(w, html); err != nil {
		log.Printf("relay: error writing test page: %v", err)
	}
}
