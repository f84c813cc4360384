//go:build ignore

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/diogo/orbchat/internal/api"
	"github.com/diogo/orbchat/internal/config"
)

func main() {
	fmt.Println("=== Stream Debug Test ===\n")

	cfg, _ := config.LoadConfig()
	client, _ := api.NewClient(cfg)
	defer client.Close()

	// Mesmo fluxo do comando query
	fmt.Printf("[%s] Opening stream...\n", time.Now().Format("15:04:05"))
	start := time.Now()

	stream, err := client.OpenNewChatStream(context.Background(), api.Payload{Text: "Responda apenas: OK"})
	if err != nil {
		fmt.Printf("Open failed: %v\n", err)
		return
	}
	defer stream.Close()
	fmt.Printf("[%s] Stream open, chat id: %s\n\n", time.Now().Format("15:04:05"), stream.ChatID)

	deltas := 0
	var text string
	for {
		delta, err := stream.Next(context.Background())
		if delta != "" {
			deltas++
			text += delta
			fmt.Printf("[%s] delta %d: %q\n", time.Now().Format("15:04:05.000"), deltas, delta)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("Stream error: %v\n", err)
			return
		}
	}

	fmt.Printf("\n[%s] Done in %s, %d deltas, %d bytes\n", time.Now().Format("15:04:05"), time.Since(start).Round(time.Millisecond), deltas, len(text))
	fmt.Printf("Text: %s\n", text)
}
