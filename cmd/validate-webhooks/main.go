package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/divebase/divebase/subscriptions"
)

/* validate-webhooks - Standalone CLI tool to validate webhooks.yaml
 * Usage: go run cmd/validate-webhooks/main.go [webhooks.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	webhooksFile := "webhooks.yaml"
	if len(os.Args) > 1 {
		webhooksFile = os.Args[1]
	}

	fmt.Printf("Validating webhooks file: %s\n", webhooksFile)
	fmt.Println(strings.Repeat("-", 50))

	loader := subscriptions.NewLoader()
	if err := loader.Load(webhooksFile); err != nil {
		fmt.Fprintf(os.Stderr, "VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	subs := loader.List()
	fmt.Printf("VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d webhook(s):\n", len(subs))

	for i, sub := range subs {
		fmt.Printf("\n%d. Webhook: %s\n", i+1, sub.ID)
		fmt.Printf("   Organization: %s\n", sub.OrganizationID)
		fmt.Printf("   URL:          %s\n", sub.URL)
		fmt.Printf("   Events:       %s\n", strings.Join(sub.Events, ", "))
		fmt.Printf("   Active:       %t\n", sub.Active)
	}

	fmt.Printf("\nAll webhooks are valid!\n")
	os.Exit(0)
}
