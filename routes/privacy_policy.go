package routes

import (
	"fmt"
	"net/http"
)

// PrivacyPolicyHandler serves the Privacy Policy content
func PrivacyPolicyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	html := `
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8">
		<meta name="viewport" content="width=device-width, initial-scale=1.0">
		<title>Open Talk Privacy Policy</title>
	</head>
	<body>
		<h1>Privacy Policy</h1>
		<p>Open Talk connects you with people for live audio and video calls.</p>
		<p>While you are connected we keep your online status and, while you search, your place in the matchmaking queue.</p>
		<p>Calls are relayed peer to peer. We store only who took part in a call, when it started and how long it lasted.</p>
		<p>Profile pictures are stored privately and shared with your matches through short-lived links.</p>
	</body>
	</html>
	`
	fmt.Fprint(w, html)
}
