package api

import (
	"net/http"
)

// handleWebInterface serves the single-page show board viewer. It reads guild
// data through the public API so it works without logging in.
func (a *API) handleWebInterface(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(webIndexHTML))
}

const webIndexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Mecha Waffles Show Board</title>
  <style>
    body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; background: #1e1f22; color: #dbdee1; }
    h1 { font-size: 1.4rem; }
    input { width: 100%; padding: .5rem; border-radius: 6px; border: 1px solid #3f4147; background: #2b2d31; color: inherit; }
    .card { background: #2b2d31; border-radius: 8px; padding: 1rem; margin: .75rem 0; }
    .card h2 { margin: 0 0 .25rem; font-size: 1.05rem; }
    .muted { color: #949ba4; font-size: .85rem; }
    a { color: #00a8fc; }
  </style>
</head>
<body>
  <h1>&#x1F9E0;&#x1F95E; Mecha Waffles Show Board</h1>
  <p class="muted">Enter a server ID to see its upcoming Whatnot shows.</p>
  <input id="guild" placeholder="Server ID" />
  <div id="shows"></div>
  <script>
    async function loadShows(guildId) {
      const container = document.getElementById("shows");
      container.innerHTML = "";
      if (!guildId) return;
      const res = await fetch("/api/public/guilds/" + encodeURIComponent(guildId) + "/shows");
      if (!res.ok) {
        container.innerHTML = '<p class="muted">Could not load shows.</p>';
        return;
      }
      const shows = await res.json();
      if (shows.length === 0) {
        container.innerHTML = '<p class="muted">No shows posted yet.</p>';
        return;
      }
      for (const s of shows) {
        const card = document.createElement("div");
        card.className = "card";
        const link = s.link ? '<a href="' + s.link + '">' + s.link + "</a>" : '<span class="muted">(no link)</span>';
        card.innerHTML = "<h2>" + s.whatnotName + " : " + s.date + " " + s.time + "</h2>" +
          "<p>" + s.description + "</p>" + link +
          '<p class="muted">updated ' + s.updatedUtc + "</p>";
        container.appendChild(card);
      }
    }
    const input = document.getElementById("guild");
    input.addEventListener("change", () => loadShows(input.value.trim()));
    const match = location.pathname.match(/^\/guilds\/(\d+)/);
    if (match) { input.value = match[1]; loadShows(match[1]); }
  </script>
</body>
</html>
`
