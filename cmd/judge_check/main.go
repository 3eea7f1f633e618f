package main

import (
	"context"
	"fmt"
	"log"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"sfinx/internal/config"
	"sfinx/internal/llm"
	"sfinx/internal/logger"
	"sfinx/internal/service"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(logger.Options{FilePath: cfg.LogFile})
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, zl,
		llm.WithTimeout(cfg.LLMTimeout()),
		llm.WithJSONResponse(),
		llm.WithTemperature(0),
	)
	judge := service.NewJudgeService(llmClient, zl)

	var passed, total int
	for _, sc := range defaultScenarios() {
		total++
		color.Cyan("[%s] %s", sc.Name, sc.Answer)

		res, err := runScenario(ctx, judge, sc)
		if err != nil {
			color.Red("  error: %v", err)
			continue
		}
		for _, o := range res.Observations {
			fmt.Printf("  %-12s rating=%.2f weight=%.2f\n", o.Trait, o.NormalizedRating, o.Weight)
		}
		if res.Passed {
			passed++
			color.Green("  OK (productive=%t)", res.Productive)
		} else {
			color.Red("  FAIL: productive=%t, expected %t", res.Productive, sc.ExpectEvidence)
		}
	}

	summary := color.GreenString
	if passed != total {
		summary = color.RedString
	}
	fmt.Println(summary("%d/%d escenarios calibrados", passed, total))
}
