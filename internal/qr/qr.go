// Package qr encodes purchase data into the QR transport string scanned
// at recycling bins, and decodes it back with required-field validation.
// The transport string is the JSON payload itself; the image artifact is
// rendered by an external QR service and referenced by URL.
package qr

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/ecorewards/ecorewards-backend/internal/apperr"
)

const imageServiceURL = "https://api.qrserver.com/v1/create-qr-code/?size=240x240&data="

type Item struct {
	Name          string `json:"name"`
	WasteTypeID   uint64 `json:"waste_type_id"`
	WasteTypeName string `json:"waste_type_name"`
	Category      string `json:"waste_type_category"`
	BinColor      string `json:"bin_color"`
	Quantity      int    `json:"quantity"`
	Points        int    `json:"points"`
}

type Payload struct {
	PurchaseID   uint64 `json:"purchase_id"`
	PurchaseCode string `json:"purchase_code"`
	UserUID      string `json:"user_id"`
	BranchID     uint64 `json:"branch_id"`
	Items        []Item `json:"items"`
}

// Encode serializes the payload to its transport string and the URL of
// the rendered QR image. Deterministic for identical input.
func Encode(p Payload) (data string, imageURL string, err error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", "", err
	}
	data = string(raw)
	return data, imageServiceURL + url.QueryEscape(data), nil
}

var requiredFields = []string{"purchase_id", "purchase_code", "user_id", "branch_id", "items"}

var requiredItemFields = []string{"name", "waste_type_id", "waste_type_name", "waste_type_category"}

// Decode parses a transport string. It has no side effects and is
// idempotent; all failures are Validation errors.
func Decode(data string) (*Payload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, apperr.Validation("Invalid QR code data")
	}
	for _, f := range requiredFields {
		if _, ok := fields[f]; !ok {
			return nil, apperr.Validation(fmt.Sprintf("Missing required field: %s", f))
		}
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(fields["items"], &items); err != nil || len(items) == 0 {
		return nil, apperr.Validation("Items must be a non-empty list")
	}
	for _, item := range items {
		for _, f := range requiredItemFields {
			if _, ok := item[f]; !ok {
				return nil, apperr.Validation(fmt.Sprintf("Missing required item field: %s", f))
			}
		}
	}

	var p Payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, apperr.Validation("Invalid QR code data")
	}
	return &p, nil
}

// RedemptionPayload is the QR content issued for a redeemed reward.
type RedemptionPayload struct {
	Type           string `json:"type"`
	RedemptionCode string `json:"redemption_code"`
	RewardID       uint64 `json:"reward_id"`
	RewardName     string `json:"reward_name"`
	UserUID        string `json:"user_id"`
	ExpiresAt      string `json:"expires_at"`
}

// EncodeRedemption renders the redemption QR image URL.
func EncodeRedemption(p RedemptionPayload) (string, error) {
	p.Type = "reward_redemption"
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return imageServiceURL + url.QueryEscape(string(raw)), nil
}
