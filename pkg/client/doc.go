// Package client is the Go SDK for the provenance anchoring service.
//
// It covers the seven supply-chain stage endpoints (farmer registration
// through AI scoring) and the generic content-addressed storage
// endpoints, with typed receipts and structured errors.
//
// # Anchoring a stage record
//
//	c := client.New("http://localhost:8080")
//	receipt, err := c.RegisterFarmer(ctx, client.FarmerRegistration{
//	    FarmerName: "Asha Patil",
//	    CropType:   "rice",
//	    Location:   "Nashik",
//	})
//	fmt.Println(receipt.FarmerDID, receipt.CropIDHash, receipt.IPFSCID)
//
// # Handling failures
//
// Errors from the service decode into *APIError. Kind tells you what
// to do next:
//
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) && apiErr.Kind == "pin_failed" {
//	    // Content persisted; retry only the pin.
//	    c.Pin(ctx, apiErr.CID)
//	}
//
// # Raw storage access
//
// Content not tied to a stage can be stored and fetched directly:
//
//	up, _ := c.Upload(ctx, json.RawMessage(`{"doc":"quality report"}`), true)
//	got, _ := c.Fetch(ctx, up.CID)
package client
