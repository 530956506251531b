package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// Simula los avisos de Mercado Pago contra el webhook local. Soporta las
// dos formas reales: body JSON {type, data.id} y query ?topic=&id=.
type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func main() {
	target := flag.String("url", "http://localhost:8080/api/mercadopago/webhook", "Webhook URL")
	topic := flag.String("type", "payment", "Notification type (payment, merchant_order)")
	dataID := flag.String("data-id", "", "Payment or merchant order ID")
	asQuery := flag.Bool("query", false, "Send as query params (?topic=&id=) instead of JSON body")
	dryRun := flag.Bool("dry-run", false, "Only print the request, don't send")

	flag.Parse()

	if *dataID == "" {
		fmt.Fprintf(os.Stderr, "Error: -data-id is required\n")
		os.Exit(1)
	}

	var req *http.Request
	var err error

	if *asQuery {
		u, perr := url.Parse(*target)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Error parsing url: %v\n", perr)
			os.Exit(1)
		}
		q := u.Query()
		q.Set("topic", *topic)
		q.Set("id", *dataID)
		u.RawQuery = q.Encode()

		fmt.Printf("POST %s\n", u.String())
		if *dryRun {
			fmt.Println("[DRY RUN] Not sending request")
			return
		}
		req, err = http.NewRequest("POST", u.String(), nil)
	} else {
		payload := webhookPayload{Type: *topic}
		payload.Data.ID = *dataID

		body, merr := json.Marshal(payload)
		if merr != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", merr)
			os.Exit(1)
		}

		fmt.Printf("POST %s\nBody: %s\n", *target, string(body))
		if *dryRun {
			fmt.Println("[DRY RUN] Not sending request")
			return
		}
		req, err = http.NewRequest("POST", *target, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(respBody))

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
