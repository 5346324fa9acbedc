package api

var tmpl = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>YT-Keywords</title>
    <style>
        :root { --bg: #121212; --card: #1e1e1e; --text: #e0e0e0; --accent: #ff4444; }
        body { background: var(--bg); color: var(--text); font-family: system-ui, sans-serif; display: grid; place-items: center; min-height: 100vh; margin: 0; }
        .container { background: var(--card); padding: 2rem; border-radius: 12px; box-shadow: 0 10px 30px rgba(0,0,0,0.5); width: 90%; max-width: 520px; text-align: center; }
        h1 { margin: 0 0 1rem; font-size: 1.5rem; color: var(--accent); }
        input, textarea { width: 100%; padding: 12px; margin: 10px 0; border: 1px solid #333; border-radius: 6px; background: #252525; color: #fff; box-sizing: border-box; outline: none; font: inherit; }
        textarea { min-height: 140px; resize: vertical; }
        input:focus, textarea:focus { border-color: var(--accent); }
        button { width: 100%; padding: 12px; margin-top: 6px; border: none; border-radius: 6px; background: var(--accent); color: white; font-weight: bold; cursor: pointer; transition: 0.2s; }
        button:hover { opacity: 0.9; }
        button:disabled { background: #555; cursor: not-allowed; }
        .spinner { display: none; width: 22px; height: 22px; margin: 10px auto; border: 3px solid #333; border-top-color: var(--accent); border-radius: 50%; animation: spin 0.8s linear infinite; }
        .spinner.on { display: block; }
        @keyframes spin { to { transform: rotate(360deg); } }
        #toast { position: fixed; bottom: 24px; left: 50%; transform: translateX(-50%); background: #333; padding: 8px 16px; border-radius: 6px; opacity: 0; transition: opacity 0.3s; }
        #toast.on { opacity: 1; }
    </style>
</head>
<body>
    <div class="container">
        <h1>YouTube Keywords</h1>
        <form id="kwForm">
            <input type="text" id="url" placeholder="Paste YouTube URL and press Enter..." autocomplete="off">
            <button type="submit" id="btn">Extract Keywords</button>
        </form>
        <div class="spinner" id="spinner"></div>
        <textarea id="out" readonly></textarea>
        <button type="button" id="copy">Copy</button>
    </div>
    <div id="toast"></div>

    <script>
        const f = document.getElementById('kwForm'),
              u = document.getElementById('url'),
              b = document.getElementById('btn'),
              o = document.getElementById('out'),
              sp = document.getElementById('spinner'),
              toast = document.getElementById('toast');

        let current = null;

        function render(state) {
            sp.classList.toggle('on', state.loading);
            b.disabled = state.loading;
            o.value = state.text;
        }

        function notify(msg) {
            toast.textContent = msg;
            toast.classList.add('on');
            setTimeout(function () { toast.classList.remove('on'); }, 2000);
        }

        function describe(data) {
            if (data.success) return data.found ? data.keywords : 'No keywords found in the video page source.';
            if (data.error_kind === 'invalid_url') return 'Please enter a valid YouTube video URL.';
            return 'Error fetching page source: ' + data.error;
        }

        f.onsubmit = async function (e) {
            e.preventDefault();
            const url = u.value.trim();
            if (!url) {
                render({loading: false, text: 'Please enter a YouTube video URL to extract keywords.'});
                return;
            }
            if (current) current.abort();
            const ctrl = new AbortController();
            current = ctrl;
            render({loading: true, text: 'Fetching keywords...'});

            try {
                const resp = await fetch('/api/keywords', {
                    method: 'POST',
                    headers: {'Content-Type': 'application/json'},
                    body: JSON.stringify({url: url}),
                    signal: ctrl.signal
                });
                const data = await resp.json();
                if (current === ctrl) render({loading: false, text: describe(data)});
            } catch (err) {
                if (err.name !== 'AbortError') render({loading: false, text: 'Error fetching page source: ' + err.message});
            }
        };

        document.getElementById('copy').onclick = async function () {
            if (!o.value) return;
            try {
                await navigator.clipboard.writeText(o.value);
                notify('Copied to clipboard');
            } catch (err) {
                notify('Copy failed');
            }
        };

        fetch('/api/last').then(function (r) { return r.ok ? r.json() : null; }).then(function (data) {
            if (!data || o.value) return;
            u.value = data.url;
            render({loading: false, text: describe(data)});
        }).catch(function () {});
    </script>
</body>
</html>
`
