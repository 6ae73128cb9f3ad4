package vat

// Obligation is a VAT return period.
type Obligation struct {
	// Start of the period, YYYY-MM-DD.
	Start string `json:"start"`
	// End of the period, YYYY-MM-DD.
	End string `json:"end"`
	// Due date, YYYY-MM-DD. For monthly and quarterly obligations this is one
	// month and seven days after End.
	Due string `json:"due"`
	// Status is O (open) or F (fulfilled).
	Status string `json:"status"`
	// PeriodKey is the four character id of the period.
	PeriodKey string `json:"periodKey"`
	// Received is only present for fulfilled obligations.
	Received string `json:"received,omitempty"`
}

type obligations struct {
	Obligations []Obligation `json:"obligations"`
}

// Return is a nine box VAT return.
type Return struct {
	PeriodKey string `json:"periodKey"`
	// Box 1: VAT due on sales and other outputs.
	VATDueSales float64 `json:"vatDueSales"`
	// Box 2: VAT due on acquisitions of goods made in Northern Ireland from EU Member States.
	VATDueAcquisitions float64 `json:"vatDueAcquisitions"`
	// Box 3: box 1 + box 2.
	TotalVATDue float64 `json:"totalVatDue"`
	// Box 4: VAT reclaimed on purchases and other inputs.
	VATReclaimedCurrPeriod float64 `json:"vatReclaimedCurrPeriod"`
	// Box 5: |box 3 - box 4|.
	NetVATDue float64 `json:"netVatDue"`
	// Box 6: total sales excluding VAT, whole pounds.
	TotalValueSalesExVAT int64 `json:"totalValueSalesExVAT"`
	// Box 7: total purchases excluding VAT, whole pounds.
	TotalValuePurchasesExVAT int64 `json:"totalValuePurchasesExVAT"`
	// Box 8: goods supplied from Northern Ireland to EU Member States, whole pounds.
	TotalValueGoodsSuppliedExVAT int64 `json:"totalValueGoodsSuppliedExVAT"`
	// Box 9: acquisitions made in Northern Ireland from EU Member States, whole pounds.
	TotalAcquisitionsExVAT int64 `json:"totalAcquisitionsExVAT"`
	// Finalised declares the return complete.
	Finalised bool `json:"finalised"`
}

// NewReturn fills in the derived boxes 3 and 5.
func NewReturn(periodKey string, box1, box2, box4 float64, box6, box7, box8, box9 int64) *Return {
	total := box1 + box2
	net := total - box4
	if net < 0 {
		net = -net
	}
	return &Return{
		PeriodKey:                    periodKey,
		VATDueSales:                  box1,
		VATDueAcquisitions:           box2,
		TotalVATDue:                  total,
		VATReclaimedCurrPeriod:       box4,
		NetVATDue:                    net,
		TotalValueSalesExVAT:         box6,
		TotalValuePurchasesExVAT:     box7,
		TotalValueGoodsSuppliedExVAT: box8,
		TotalAcquisitionsExVAT:       box9,
		Finalised:                    true,
	}
}

// Receipt is the response to a successful submission.
type Receipt struct {
	ProcessingDate   string `json:"processingDate"`
	PaymentIndicator string `json:"paymentIndicator,omitempty"`
	FormBundleNumber string `json:"formBundleNumber"`
	ChargeRefNumber  string `json:"chargeRefNumber,omitempty"`
}
