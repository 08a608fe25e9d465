package webui

const defaultIndexHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>DraftDeck</title>
  <style>
    body { font-family: "Segoe UI", sans-serif; margin: 0; background: linear-gradient(145deg,#f7fafc,#e9eef7); color: #1f2937; }
    .wrap { max-width: 900px; margin: 0 auto; padding: 20px; }
    .panel { background: #fff; border-radius: 12px; box-shadow: 0 8px 30px rgba(15,23,42,.08); padding: 16px; margin-bottom: 16px; }
    #log { min-height: 280px; max-height: 50vh; overflow: auto; white-space: pre-wrap; border: 1px solid #d1d5db; border-radius: 8px; padding: 12px; background: #f9fafb; }
    #activity { max-height: 20vh; overflow: auto; font-size: 12px; color: #6b7280; border: 1px dashed #d1d5db; border-radius: 8px; padding: 8px; margin-top: 8px; background: #f9fafb; }
    .row { display: flex; gap: 8px; margin-top: 10px; }
    input[type=text] { flex: 1; padding: 10px; border: 1px solid #cbd5e1; border-radius: 8px; }
    button { padding: 10px 16px; border: 0; border-radius: 8px; background: #0f766e; color: #fff; cursor: pointer; }
    button:hover { background: #0d9488; }
    #files li { margin: 4px 0; }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="panel">
      <h2>DraftDeck</h2>
      <div id="log"></div>
      <div id="activity"></div>
      <div class="row">
        <input type="text" id="msg" placeholder="Describe the email you want..." />
        <button id="send">Send</button>
      </div>
    </div>
    <div class="panel">
      <h3>Images</h3>
      <div class="row">
        <input type="file" id="picker" multiple accept="image/*" />
        <button id="upload">Upload</button>
      </div>
      <ul id="files"></ul>
    </div>
  </div>
  <script>
    const log = document.getElementById('log');
    const activity = document.getElementById('activity');
    const msg = document.getElementById('msg');
    const sessionId = 'web-' + Date.now();
    const append = (role, text) => { log.textContent += role + ': ' + text + '\n\n'; log.scrollTop = log.scrollHeight; };

    const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/api/chat/ws');
    ws.onmessage = (e) => {
      const ev = JSON.parse(e.data);
      if (ev.status === 'streaming' && ev.text) return;
      activity.textContent += '[' + ev.tool + '] ' + ev.status + (ev.error ? ': ' + ev.error : '') + '\n';
      activity.scrollTop = activity.scrollHeight;
    };

    async function sendMessage() {
      const text = msg.value.trim();
      if (!text) return;
      append('You', text);
      msg.value = '';
      const resp = await fetch('/api/chat', { method:'POST', headers:{'Content-Type':'application/json'}, body: JSON.stringify({ session_id: sessionId, text })});
      const data = await resp.json();
      append('DraftDeck', data.text || data.error || '(empty)');
    }
    document.getElementById('send').addEventListener('click', sendMessage);
    msg.addEventListener('keydown', (e) => { if (e.key === 'Enter') sendMessage(); });

    async function refreshFiles() {
      const resp = await fetch('/api/uploads');
      const data = await resp.json();
      const list = document.getElementById('files');
      list.innerHTML = '';
      (data.files || []).forEach((name) => {
        const li = document.createElement('li');
        const a = document.createElement('a');
        a.href = '/uploads/' + name;
        a.textContent = name;
        const del = document.createElement('button');
        del.textContent = 'Delete';
        del.style.marginLeft = '8px';
        del.onclick = async () => { await fetch('/api/uploads/' + name, { method: 'DELETE' }); refreshFiles(); };
        li.appendChild(a);
        li.appendChild(del);
        list.appendChild(li);
      });
    }
    document.getElementById('upload').addEventListener('click', async () => {
      const picker = document.getElementById('picker');
      if (!picker.files.length) return;
      const form = new FormData();
      for (const f of picker.files) form.append('files', f);
      await fetch('/api/uploads', { method: 'POST', body: form });
      picker.value = '';
      refreshFiles();
    });
    refreshFiles();
  </script>
</body>
</html>`
