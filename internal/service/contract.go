package service

import (
	"strings"
	"text/template"

	"carrental-backend/internal/checkout"
	"carrental-backend/internal/domain"
)

const contractTemplate = `CONTRAT DE LOCATION

Loueur : {{.Company}}
Locataire : {{.Renter.FullName}}
Adresse : {{.Renter.Address}}
Téléphone : {{.Renter.Phone}}
E-mail : {{.Renter.Email}}

Véhicule : {{.Vehicle.Name}} ({{.Vehicle.Brand}}, {{.Vehicle.Gearbox}}, {{.Vehicle.Fuel}})
Période : du {{.StartDate}} au {{.EndDate}} ({{.Days}} jour(s))
Kilométrage inclus : {{.IncludedKm}} km
Kilomètre supplémentaire : {{euros .Vehicle.ExtraKmPriceCents}}
{{- if .Delivery}}
Livraison : {{.DeliveryAddress}} ({{euros .DeliveryFeeCents}})
{{- else}}
Livraison : non, retrait en agence
{{- end}}

Prix total : {{euros .TotalCents}}
{{- if .DownPaymentCents}}
Acompte payé à la réservation : {{euros .DownPaymentCents}}
{{- end}}
Dépôt de garantie : {{euros .Vehicle.DepositCents}}

Le locataire reconnaît avoir pris connaissance des conditions générales de location.
`

var contractTmpl = template.Must(template.New("contract").
	Funcs(template.FuncMap{"euros": FormatEuros}).
	Parse(contractTemplate))

type contractData struct {
	Company          string
	Renter           domain.Renter
	Vehicle          domain.Vehicle
	StartDate        string
	EndDate          string
	Days             int
	IncludedKm       int64
	Delivery         bool
	DeliveryAddress  string
	DeliveryFeeCents int64
	TotalCents       int64
	DownPaymentCents int64
}

// RenderContract produces the plain-text rental contract for a draft.
func RenderContract(company string, renter domain.Renter, draft checkout.Draft, policy checkout.Policy) (string, error) {
	quote := draft.Quote(policy)
	data := contractData{
		Company:          company,
		Renter:           renter,
		Vehicle:          draft.Vehicle,
		StartDate:        draft.StartDate,
		EndDate:          draft.EndDate,
		Days:             quote.DurationDays,
		IncludedKm:       quote.IncludedKm,
		Delivery:         draft.Delivery,
		DeliveryAddress:  draft.DeliveryAddress,
		DeliveryFeeCents: draft.DeliveryFee(policy),
		TotalCents:       quote.TotalPriceCents,
	}
	if dp := draft.DownPayment(policy); dp != nil {
		data.DownPaymentCents = *dp
	}

	var sb strings.Builder
	if err := contractTmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
