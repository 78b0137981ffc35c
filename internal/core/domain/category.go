package domain

import "strings"

// ShipmentCategory is the top-level archive folder a shipment's files land in.
type ShipmentCategory string

const (
	CategorySettlement   ShipmentCategory = "00_SETTLEMENT"
	CategoryKRTo3PL      ShipmentCategory = "01_KR_TO_3PL"
	Category3PLOutbound  ShipmentCategory = "02_3PL_OUTBOUND"
	CategoryKRToCustomer ShipmentCategory = "03_KR_TO_CUSTOMER"
)

var (
	krWarehouses    = warehouseSet("KR", "태광KR")
	overseas3PLHubs = warehouseSet("CJ서부US", "어크로스비US", "01-US", "02-US")
)

func warehouseSet(codes ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		out[strings.ToUpper(code)] = struct{}{}
	}
	return out
}

func inWarehouses(set map[string]struct{}, code string) bool {
	_, ok := set[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// CategorizeShipment picks the archive category from the route and document
// type. Settlement statements always go to CategorySettlement. Korea to a
// customer warehouse (AMZUS, SBSMY and the like) and any unknown route fall
// back to CategoryKRToCustomer.
func CategorizeShipment(origin, destination string, docType DocumentType) ShipmentCategory {
	switch {
	case docType == DocSettlementStatement:
		return CategorySettlement
	case inWarehouses(krWarehouses, origin) && inWarehouses(overseas3PLHubs, destination):
		return CategoryKRTo3PL
	case inWarehouses(overseas3PLHubs, origin):
		return Category3PLOutbound
	default:
		return CategoryKRToCustomer
	}
}
