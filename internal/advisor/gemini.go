package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

const DefaultModel = "gemini-2.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini asks a Gemini model for structured JSON answers.
type Gemini struct {
	models contentGenerator
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{models: client.Models, model: model}, nil
}

var suggestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"carName": {
			Type:        genai.TypeString,
			Description: "The exact name of the recommended car from the list provided.",
		},
		"justification": {
			Type:        genai.TypeString,
			Description: "A short justification in French for the recommendation.",
		},
	},
	Required: []string{"carName", "justification"},
}

var verificationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"nameMatch":    {Type: genai.TypeBoolean},
		"addressMatch": {Type: genai.TypeBoolean},
		"summary":      {Type: genai.TypeString},
	},
	Required: []string{"nameMatch", "addressMatch", "summary"},
}

// SuggestVehicle picks one vehicle for the trip. An answer naming a vehicle
// outside the list falls back to the first vehicle.
func (g *Gemini) SuggestVehicle(ctx context.Context, tripDescription string, vehicles []domain.Vehicle) *Suggestion {
	if len(vehicles) == 0 || strings.TrimSpace(tripDescription) == "" {
		return nil
	}

	names := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		names = append(names, v.Name)
	}
	prompt := fmt.Sprintf(`Given the following list of available city cars: %s.
A customer wants to rent a car for the following purpose: %q.
Based on this description, which single car would you recommend?
The recommendation should consider car features like gearbox (Automatic/Manual) if mentioned or implied.
Provide a very short, compelling justification for your choice (one sentence max).
You must respond in French.`, strings.Join(names, ", "), tripDescription)

	var answer struct {
		CarName       string `json:"carName"`
		Justification string `json:"justification"`
	}
	if err := g.generate(ctx, "SuggestVehicle", prompt, suggestionSchema, &answer); err != nil {
		return nil
	}

	for _, v := range vehicles {
		if v.Name == answer.CarName {
			return &Suggestion{VehicleID: v.ID, VehicleName: v.Name, Justification: answer.Justification}
		}
	}
	logger.Warn("Gemini suggested a vehicle outside the catalog", "suggested", answer.CarName)
	first := vehicles[0]
	return &Suggestion{
		VehicleID:     first.ID,
		VehicleName:   first.Name,
		Justification: fmt.Sprintf("La %s est un excellent choix polyvalent.", first.Name),
	}
}

func (g *Gemini) VerifyDocuments(ctx context.Context, b *domain.Booking) *Verification {
	if b == nil {
		return nil
	}
	prompt := fmt.Sprintf(`You are an AI assistant for a car rental agency. Check whether a renter's documents seem to match their profile information.

Renter profile:
- Full name: %s
- Address: %s

Documents:
- Identity document: %s
- Proof of address: %s

Respond in JSON: whether the name on the identity document matches the profile name,
whether the address on the proof of address matches the profile address,
and a short summary in French of your findings.`,
		b.Renter.FullName(), b.Renter.Address, b.Documents.Identity, b.Documents.ProofOfAddress)

	var answer struct {
		NameMatch    bool   `json:"nameMatch"`
		AddressMatch bool   `json:"addressMatch"`
		Summary      string `json:"summary"`
	}
	if err := g.generate(ctx, "VerifyDocuments", prompt, verificationSchema, &answer); err != nil {
		return nil
	}
	return &Verification{NameMatch: answer.NameMatch, AddressMatch: answer.AddressMatch, Summary: answer.Summary}
}

func (g *Gemini) generate(ctx context.Context, op, prompt string, schema *genai.Schema, out any) error {
	logger.ExternalServiceCall("gemini", op, "model", g.model)
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err == nil {
		err = json.Unmarshal([]byte(strings.TrimSpace(resp.Text())), out)
	}
	logger.ExternalServiceResult("gemini", op, err)
	return err
}
