package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityUser                        // Verified identity required
	SecurityAdmin                       // Identity on the admin allow-list
)

// EndpointSecurityConfig maps HTTP route names and gRPC methods to their
// required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public
	"Health":         SecurityPublic,
	"ListVehicles":   SecurityPublic,
	"GetVehicle":     SecurityPublic,
	"QuoteVehicle":   SecurityPublic,
	"SuggestVehicle": SecurityPublic,
	"Download":       SecurityPublic,

	// gRPC health and reflection
	"/grpc.health.v1.Health/Check":                                   SecurityPublic,
	"/grpc.health.v1.Health/Watch":                                   SecurityPublic,
	"/grpc.health.v1.Health/List":                                    SecurityPublic,
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityPublic,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityPublic,

	// Account
	"GetProfile":     SecurityUser,
	"UpdateProfile":  SecurityUser,
	"ListMyBookings": SecurityUser,

	// Checkout
	"OpenCheckout":             SecurityUser,
	"GetCheckout":              SecurityUser,
	"SetCheckoutDates":         SecurityUser,
	"SetCheckoutDelivery":      SecurityUser,
	"SetCheckoutPaymentOption": SecurityUser,
	"AttachCheckoutDocument":   SecurityUser,
	"NextCheckoutStep":         SecurityUser,
	"PreviousCheckoutStep":     SecurityUser,
	"PayCheckout":              SecurityUser,
	"GetCheckoutContract":      SecurityUser,
	"CancelCheckout":           SecurityUser,

	// Admin
	"AdminListBookings":    SecurityAdmin,
	"AdminTransition":      SecurityAdmin,
	"AdminVerifyDocuments": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a route. Unknown routes
// require an identity.
func GetSecurityLevel(name string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[name]; ok {
		return level
	}
	return SecurityUser
}
