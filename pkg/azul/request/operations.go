package request

// DataVault transaction types.
const (
	DataVaultCreate = "CREATE"
	DataVaultDelete = "DELETE"
)

// Void cancels a previously approved transaction before settlement.
type Void struct {
	Channel     string `json:"Channel"`
	Store       string `json:"Store"`
	AzulOrderId string `json:"AzulOrderId"`
}

// Post captures a previously placed hold, fully or partially.
type Post struct {
	Channel     string `json:"Channel"`
	Store       string `json:"Store"`
	AzulOrderId string `json:"AzulOrderId"`
	Amount      string `json:"Amount"`
	Itbis       string `json:"Itbis,omitempty"`
}

// Verify looks a transaction up by the merchant assigned CustomOrderId.
type Verify struct {
	Channel       string `json:"Channel"`
	Store         string `json:"Store"`
	CustomOrderId string `json:"CustomOrderId"`
}

// DataVault creates or deletes a stored card token.
type DataVault struct {
	Channel        string `json:"Channel"`
	Store          string `json:"Store"`
	TrxType        string `json:"TrxType"`
	CardNumber     string `json:"CardNumber,omitempty"`
	Expiration     string `json:"Expiration,omitempty"`
	CVC            string `json:"CVC,omitempty"`
	DataVaultToken string `json:"DataVaultToken,omitempty"`
}
