package routes

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"polyglot_server/services"

	"github.com/gorilla/mux"
)

// RegisterSharePage serves a small HTML page for /share/{token} that copies
// the invite message to the clipboard. Falls back to a hidden textarea with
// execCommand when the Clipboard API is unavailable.
func RegisterSharePage(r *mux.Router, tokenService *services.TokenService, profileService *services.ProfileService) {
	r.HandleFunc("/share/{token}", func(w http.ResponseWriter, req *http.Request) {
		tokenValue := mux.Vars(req)["token"]

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		token, err := tokenService.GetToken(ctx, tokenValue)
		if err != nil {
			http.Error(w, "Invalid or expired connection link", http.StatusNotFound)
			return
		}

		owner, err := profileService.GetProfile(ctx, token.UserID)
		if err != nil {
			http.Error(w, "Failed to load connection link", http.StatusInternalServerError)
			return
		}

		message := tokenService.ShareMessage(owner, token.Token)
		connectURL := template.HTMLEscapeString(tokenService.ConnectURL(token.Token))

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, sharePageHTML,
			template.HTMLEscapeString(owner.FirstName),
			connectURL,
			connectURL,
			template.JSEscapeString(message),
		)
	}).Methods("GET")
}

const sharePageHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Connect on Polyglot Chat</title>
</head>
<body>
	<h1>Connect with %s on Polyglot Chat</h1>
	<p id="status">Copying invite to clipboard...</p>
	<p><a href="%s">%s</a></p>
	<script>
		const message = "%s";
		function copied() {
			document.getElementById("status").textContent = "Invite copied to clipboard!";
		}
		function fallbackCopy() {
			const textarea = document.createElement("textarea");
			textarea.value = message;
			textarea.style.position = "fixed";
			textarea.style.opacity = "0";
			document.body.appendChild(textarea);
			textarea.select();
			try {
				document.execCommand("copy");
				copied();
			} catch (err) {
				document.getElementById("status").textContent = "Copy the invite manually:";
			}
			document.body.removeChild(textarea);
		}
		if (navigator.clipboard && navigator.clipboard.writeText) {
			navigator.clipboard.writeText(message).then(copied).catch(fallbackCopy);
		} else {
			fallbackCopy();
		}
	</script>
</body>
</html>
`
