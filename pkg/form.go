package pkg

import (
	"bytes"
	"html/template"

	log "github.com/sirupsen/logrus"
)

// The challenge handoff page is invisible to the cardholder, it only exists
// to POST the browser to the ACS. html/template escapes every value in
// attribute context, the creq blob and urls are not trusted to be clean.
var challengeFormTemplate = template.Must(template.New("challenge-form").Parse(
	`<!DOCTYPE html>
<html>
<head><title>Redirecting</title></head>
<body onload="document.getElementById('challenge-form').submit();">
<form id="challenge-form" method="POST" action="{{.AcsUrl}}">
<input type="hidden" name="creq" value="{{.CReq}}"/>
<input type="hidden" name="TermUrl" value="{{.TermUrl}}"/>
<noscript><input type="submit" value="Continue"/></noscript>
</form>
</body>
</html>
`))

type challengeFormData struct {
	AcsUrl  string
	CReq    string
	TermUrl string
}

// BuildChallengeForm renders the auto-submitting form that hands the
// cardholder browser off to the ACS. TermUrl must be the exact url stored
// at initiation, the ACS posts the challenge result back to it.
func BuildChallengeForm(creq, termUrl, acsUrl string) string {
	var buf bytes.Buffer
	err := challengeFormTemplate.Execute(&buf, challengeFormData{
		AcsUrl:  acsUrl,
		CReq:    creq,
		TermUrl: termUrl,
	})
	if err != nil {
		// cannot happen with a buffer writer, logged for completeness
		log.WithError(err).Error("error rendering challenge form")
		return ""
	}
	return buf.String()
}
