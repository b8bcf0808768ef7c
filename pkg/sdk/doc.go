// Package sdk provides a Go client for the madhava gateway HTTP API.
//
//	client := sdk.New("http://localhost:4000",
//	    sdk.WithAPIKey("secret"),
//	)
//	resp, _ := client.Query(ctx, sdk.QueryRequest{
//	    Query:  "What moved ACME today?",
//	    Domain: "finance",
//	})
//	fmt.Println(resp.Answer)
package sdk
