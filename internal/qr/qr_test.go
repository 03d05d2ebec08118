package qr

import (
	"strings"
	"testing"
)

func samplePayload() Payload {
	return Payload{
		PurchaseID:   42,
		PurchaseCode: "ECO-1A2B3C4D",
		UserUID:      "uid-123",
		BranchID:     7,
		Items: []Item{
			{
				Name:          "Botella de Plástico PET",
				WasteTypeID:   1,
				WasteTypeName: "Botella de Plástico PET",
				Category:      "plastic",
				BinColor:      "yellow",
				Quantity:      2,
				Points:        20,
			},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data, imageURL, err := Encode(samplePayload())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(imageURL, "https://api.qrserver.com/") {
		t.Fatalf("unexpected image url: %s", imageURL)
	}

	p, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.PurchaseID != 42 || p.PurchaseCode != "ECO-1A2B3C4D" || p.UserUID != "uid-123" || p.BranchID != 7 {
		t.Fatalf("decoded payload mismatch: %+v", p)
	}
	if len(p.Items) != 1 || p.Items[0].Quantity != 2 || p.Items[0].Category != "plastic" {
		t.Fatalf("decoded items mismatch: %+v", p.Items)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	d1, u1, err := Encode(samplePayload())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	d2, u2, err := Encode(samplePayload())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if d1 != d2 || u1 != u2 {
		t.Fatalf("encode is not deterministic")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{"not json", "not-json-at-all", "Invalid QR code data"},
		{"missing purchase_id", `{"purchase_code":"X","user_id":"u","branch_id":1,"items":[{"name":"a","waste_type_id":1,"waste_type_name":"a","waste_type_category":"plastic"}]}`, "Missing required field: purchase_id"},
		{"missing branch_id", `{"purchase_id":1,"purchase_code":"X","user_id":"u","items":[{"name":"a","waste_type_id":1,"waste_type_name":"a","waste_type_category":"plastic"}]}`, "Missing required field: branch_id"},
		{"empty items", `{"purchase_id":1,"purchase_code":"X","user_id":"u","branch_id":1,"items":[]}`, "Items must be a non-empty list"},
		{"items not a list", `{"purchase_id":1,"purchase_code":"X","user_id":"u","branch_id":1,"items":"nope"}`, "Items must be a non-empty list"},
		{"missing item field", `{"purchase_id":1,"purchase_code":"X","user_id":"u","branch_id":1,"items":[{"name":"a","waste_type_id":1,"waste_type_name":"a"}]}`, "Missing required item field: waste_type_category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if err == nil {
				t.Fatalf("expected error")
			}
			if err.Error() != tt.wantMsg {
				t.Fatalf("got %q want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestEncodeRedemptionSetsType(t *testing.T) {
	u, err := EncodeRedemption(RedemptionPayload{
		RedemptionCode: "RWD-ABCDEF1234",
		RewardID:       3,
		RewardName:     "Café Gratis",
		UserUID:        "uid-123",
	})
	if err != nil {
		t.Fatalf("encode redemption: %v", err)
	}
	if !strings.Contains(u, "reward_redemption") {
		t.Fatalf("redemption type missing from payload: %s", u)
	}
}
