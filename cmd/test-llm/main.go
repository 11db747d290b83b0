package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ledgerchat/ledgerchat/internal/assistant"
	"github.com/ledgerchat/ledgerchat/internal/llm"
)

func main() {
	fmt.Println("=== OpenAI Client Test ===")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("Please set OPENAI_API_KEY environment variable")
	}

	fmt.Println("Initializing OpenAI client...")
	client, err := llm.NewOpenAIClient(apiKey, os.Getenv("OPENAI_MODEL"))
	if err != nil {
		log.Fatalf("Failed to create OpenAI client: %v", err)
	}
	fmt.Println("✓ OpenAI client created successfully")

	ctx := context.Background()

	fmt.Println("\n1. Testing SQL translation...")
	testTranslation(ctx, client, "How much did I spend on food this month?")

	fmt.Println("\n2. Testing translation with a time range...")
	testTranslation(ctx, client, "Show my travel expenses for the last 30 days")

	fmt.Println("\n3. Testing summarization...")
	testSummarization(ctx, client)

	fmt.Println("\nAll OpenAI client tests completed!")
}

func testTranslation(ctx context.Context, client *llm.OpenAIClient, question string) {
	response, err := client.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: assistant.SchemaContext},
		{Role: llm.RoleUser, Content: question},
	})
	if err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		return
	}

	fmt.Printf("  Question: %s\n", question)
	fmt.Printf("  SQL: %s\n", truncateString(response, 200))
	fmt.Println("  ✓ Translation successful")
}

func testSummarization(ctx context.Context, client *llm.OpenAIClient) {
	prompt := `Summarize this query result for the question "How much did I spend on food?":
category | total
Food & Drinks | 284.50`

	response, err := client.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		return
	}

	fmt.Printf("  Summary: %s\n", truncateString(response, 200))
	fmt.Println("  ✓ Summarization successful")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
