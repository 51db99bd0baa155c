package vehicle

import "fmt"

const analysisPrompt = `Analyse the vehicle in these photos and answer with a single JSON object:

{
  "make": "exact make (e.g. Jeep, Mercedes-Benz, BMW)",
  "model": "exact model (e.g. Wrangler Unlimited, A35 AMG, X5)",
  "year": "year or range (e.g. 2020, 2018-2020)",
  "engine": "displacement from badges (e.g. 2.0T, 3.6L, 2.0d)",
  "fuel": "gasoline/diesel/hybrid/electric",
  "trim": "trim level (e.g. Sahara, Rubicon, Sport, M Sport)",
  "co2": "estimated CO2 in g/km (e.g. 180, 243, 150)",
  "condition": "short description of condition and visible damage",
  "modifications": "visible aftermarket modifications",
  "confidence": "confidence score 0-100",
  "clarificationQuestions": ["question 1", "question 2"],
  "photoRecommendations": ["photo type 1", "photo type 2"]
}

Answer ONLY with valid JSON, no extra text.`

func marketPrompt(d Description) string {
	return fmt.Sprintf(`Estimate the current used-car resale price in the EU (Netherlands/Germany) for:

make: %s
model: %s
year: %d
engine: %s
fuel: %s

Answer ONLY with a JSON object: {"min": number, "max": number, "currency": "EUR", "notes": "short justification"}`,
		d.Make, d.Model, d.ModelYear, d.EngineDescription, d.FuelType)
}
