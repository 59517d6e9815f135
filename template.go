package main

import (
	"html/template"
)

type templateArgs struct {
	Host string
}

var webTemplate = template.Must(template.New("webTemplate").Parse(`
<html>
<head>
<title>chathub {{.Host}}</title>
<script type="text/javascript">
window.onload = function() {
    var conn;
    var sid = "";
    var log = document.getElementById("log");
    var sender = document.getElementById("sender");
    var receiver = document.getElementById("receiver");
    var msg = document.getElementById("msg");

    function appendLog(text, bold) {
        var d = log;
        var doScroll = d.scrollTop == d.scrollHeight - d.clientHeight;
        var item = document.createElement("div");
        if (bold) {
            var b = document.createElement("b");
            b.textContent = text;
            item.appendChild(b);
        } else {
            item.textContent = text;
        }
        d.appendChild(item);
        if (doScroll) {
            d.scrollTop = d.scrollHeight - d.clientHeight;
        }
    }

    document.getElementById("form").onsubmit = function() {
        if (!conn || !msg.value) {
            return false;
        }
        conn.send(JSON.stringify({
            event: "sendMessage",
            data: {senderId: sender.value || sid, receiverId: receiver.value, message: msg.value}
        }));
        msg.value = "";
        return false;
    };

    if (window["WebSocket"]) {
        var scheme = location.protocol === "https:" ? "wss://" : "ws://";
        conn = new WebSocket(scheme + location.host + "/");
        conn.onclose = function(evt) {
            appendLog("Connection closed.", true);
        };
        conn.onmessage = function(evt) {
            var ev = JSON.parse(evt.data);
            if (ev.event === "connect") {
                sid = ev.data.sid;
                appendLog("Connected as " + sid, true);
            } else if (ev.event === "message") {
                appendLog(ev.data.senderId + " -> " + ev.data.receiverId + ": " + ev.data.message, false);
            }
        };
        msg.focus();
    } else {
        appendLog("Your browser does not support WebSockets.", true);
    }
};
</script>
<style type="text/css">
html {
    overflow: hidden;
}

body {
    overflow: hidden;
    padding: 0.5em;
    margin: 0;
    width: 100%;
    height: 100%;
    background: gray;
}

#log {
    background: white;
    margin: 0;
    padding: 0.5em 0.5em 0.5em 0.5em;
    position: absolute;
    top: 2.0em;
    left: 0.5em;
    right: 0.5em;
    bottom: 3em;
    overflow: auto;
}

#form {
    padding: 0 0.5em 0 0.5em;
    margin: 0;
    position: absolute;
    bottom: 0.5em;
    left: 0px;
    width: 100%;
    overflow: hidden;
}

</style>
</head>
<body>
<h3>Websocket client for {{.Host}}</h3>
<div id="log"></div>
<form id="form">
    <input type="submit" value="Send" />
    <input type="text" id="sender" size="12" placeholder="sender"/>
    <input type="text" id="receiver" size="12" placeholder="receiver"/>
    <input type="text" id="msg" size="48"/>
</form>
</body>
</html>
`))
