package api

import "net/url"

// API paths, relative to the server origin.
const (
	LoginPath     = "/api/v1/auth/login"
	SignupPath    = "/api/v1/auth/signup"
	MePath        = "/api/v1/me"
	MyOffersPath  = "/api/v1/me/offers"
	OffersPath    = "/api/v1/offers"
	PurchasesPath = "/api/v1/purchases"
	SalesPath     = "/api/v1/sales"
)

// OfferPath returns the path of a single offer.
func OfferPath(uuid string) string {
	return OffersPath + "/" + url.PathEscape(uuid)
}

// OfferPurchasesPath returns the path used to buy from an offer.
func OfferPurchasesPath(uuid string) string {
	return OfferPath(uuid) + "/purchases"
}

// ContractPath returns the contract path of a purchase.
func ContractPath(purchaseUUID string) string {
	return PurchasesPath + "/" + url.PathEscape(purchaseUUID) + "/contract"
}
