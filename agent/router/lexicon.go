package router

// The lexicons below drive the first, purely deterministic routing pass.
// Phrases may span multiple words; matching is case-insensitive substring
// against the whole message.

var medicalTerms = []string{
	"pain", "ache", "hurt", "hurts", "sore", "injury", "injured",
	"symptom", "swelling", "swollen", "dizzy", "dizziness", "numb",
	"sprain", "fracture", "broken", "surgery", "operation", "recovery",
	"recovering", "rehab", "rehabilitation", "arthritis", "diabetes",
	"blood pressure", "mobility problem", "can't walk", "cannot walk",
	"trouble walking", "difficulty walking", "fell down", "fall risk",
	"bedridden", "elderly parent", "wound", "doctor said", "diagnosed",
}

var salesTerms = []string{
	"price", "cost", "how much", "cheap", "cheapest", "expensive",
	"budget", "discount", "offer", "deal", "buy", "purchase", "order",
	"in stock", "stock", "available", "availability", "delivery",
	"shipping", "recommend", "recommendation", "compare", "comparison",
	"catalog", "catalogue", "brand", "model", "warranty", "show me",
	"looking for", "do you have", "do you sell", "best seller",
}
