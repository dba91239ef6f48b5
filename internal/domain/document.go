package domain

type DocumentType string

const (
	DocumentLicenseFront   DocumentType = "license_front"
	DocumentLicenseBack    DocumentType = "license_back"
	DocumentIdentity       DocumentType = "identity"
	DocumentProofOfAddress DocumentType = "proof_of_address"
)

// RequiredDocuments lists every slot a checkout must fill before payment.
var RequiredDocuments = []DocumentType{
	DocumentLicenseFront,
	DocumentLicenseBack,
	DocumentIdentity,
	DocumentProofOfAddress,
}

func (t DocumentType) Valid() bool {
	for _, r := range RequiredDocuments {
		if r == t {
			return true
		}
	}
	return false
}
