package reply

import "github.com/nadzzz/mandirate/internal/lang"

// phrasebook holds every reply template for one language.
//
// Rate and Total are fmt formats. Rate takes (name, price, unit);
// Total takes (quantity, unit, name, total, price, unit).
type phrasebook struct {
	Rate     string
	Total    string
	Apology  string
	Greeting string
	Units    map[string]string
}

var phrasebooks = map[lang.Code]phrasebook{
	lang.English: {
		Rate:     "Today's %s rate is approx ₹%s/%s.",
		Total:    "Total for %d %s %s is ₹%s (₹%s/%s).",
		Apology:  "Sorry, I couldn't find that item. Ask me mandi prices like 'Aloo ka rate?'",
		Greeting: "Namaste! I can help you with mandi prices and billing.",
		Units:    map[string]string{"kg": "kg"},
	},
	lang.Hindi: {
		Rate:     "आज %s का भाव लगभग ₹%s/%s है।",
		Total:    "%d %s %s का कुल दाम ₹%s है (₹%s/%s)।",
		Apology:  "माफ़ कीजिए, यह सामान नहीं मिला। ऐसे पूछें: 'आलू का रेट?'",
		Greeting: "नमस्ते! मैं आपको मंडी भाव और बिलिंग में मदद कर सकता हूँ।",
		Units:    map[string]string{"kg": "किलो"},
	},
}

// totalTriggers mark an utterance that asks for a total rather than a rate.
// They are matched against normalized text, so Latin entries are lower case.
var totalTriggers = []string{
	"total", "how much", "kitna", "kitne", "kul",
	"कुल", "कितना", "कितने", "टोटल",
}
