package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"sfinx/internal/config"
	"sfinx/internal/interview"
	"sfinx/internal/llm"
	"sfinx/internal/logger"
	"sfinx/internal/repository"
	"sfinx/internal/service"
)

// Repreguntas que el entrevistador simulado usa mientras la fase de background sigue abierta.
var followups = []string{
	"What was the hardest trade-off you had to make there?",
	"How did you decide on that approach over the alternatives?",
	"What would you do differently if you started it again today?",
	"Tell me about a moment where the plan stopped working.",
}

func main() {
	candidate := flag.String("candidate", "", "nombre del candidato")
	archivePath := flag.String("archive", "", "archivo SQLite donde guardar la foto final")
	flag.Parse()

	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(logger.Options{FilePath: cfg.LogFile, Production: false})
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	script, err := config.LoadScript(cfg.InterviewScriptPath)
	if err != nil {
		log.Fatalf("script: %v", err)
	}

	var repos service.InterviewRepositories
	var archive *repository.SQLiteArchiveRepository
	if *archivePath != "" {
		archive, err = repository.NewSQLiteArchiveRepository(*archivePath)
		if err != nil {
			log.Fatalf("archive: %v", err)
		}
		defer archive.Close()
		repos.Archive = archive
	}

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, zl,
		llm.WithTimeout(cfg.LLMTimeout()),
		llm.WithJSONResponse(),
		llm.WithTemperature(0),
	)
	svc := service.NewInterviewService(
		zl,
		service.NewMemorySessionStore(cfg.SessionTTL()),
		service.NewJudgeService(llmClient, zl),
		service.InterviewSettings{
			Script:            script,
			Timebox:           cfg.Timebox(),
			UnproductiveLimit: cfg.InterviewUnproductiveLimit,
		},
		repos,
	)

	name := strings.TrimSpace(*candidate)
	if name == "" {
		fmt.Print("Nombre del candidato: ")
		name = readLine(reader)
	}

	live, err := svc.Start(ctx, name)
	if err != nil {
		log.Fatalf("start: %v", err)
	}
	color.Cyan("===== Entrevista %s (timebox %s) =====", live.ID, cfg.Timebox())
	color.HiBlack("Comandos: /reset /end")

	id := live.ID
	if err := runInterview(ctx, svc, reader, id, script, name); err != nil {
		zl.Error("interview aborted", zap.Error(err))
		color.Red("Entrevista abortada: %v", err)
	}

	snap, err := svc.Snapshot(ctx, id)
	if err == nil {
		printSnapshot(snap)
	}

	if archive != nil {
		if stored, err := archive.Get(ctx, id); err == nil {
			color.Green("Archivado en %s (%s, %s)", *archivePath, stored.Stage, stored.ArchivedAt.Format(time.RFC3339))
		} else {
			color.Yellow("Sin archivo para esta entrevista: %v", err)
		}
	}
}

func runInterview(ctx context.Context, svc *service.InterviewService, reader *bufio.Reader, id string, script interview.Script, name string) error {
	if err := say(ctx, svc, id, script.RenderGreeting(name), script.InterviewerName); err != nil {
		return err
	}
	first, err := answer(ctx, svc, reader, id)
	if err != nil {
		return err
	}
	if first == "/end" {
		_, err := svc.End(ctx, id)
		return err
	}
	if err := say(ctx, svc, id, script.BackgroundQuestion, script.InterviewerName); err != nil {
		return err
	}

	asked := 0
	for {
		text, err := answer(ctx, svc, reader, id)
		if err != nil {
			return err
		}

		switch text {
		case "/end":
			_, err := svc.End(ctx, id)
			return err
		case "/reset":
			if _, err := svc.Reset(ctx, id); err != nil {
				return err
			}
			color.Yellow("Entrevista reiniciada.")
			return runInterview(ctx, svc, reader, id, script, name)
		default:
			if strings.HasPrefix(text, "/") {
				color.Yellow("Comando desconocido: %s", text)
				continue
			}
		}

		decision, _, err := svc.Evaluate(ctx, id)
		if err != nil {
			return err
		}
		printObservations(decision)
		if decision.Exited() {
			printExit(decision)
			return nil
		}

		next := followups[asked%len(followups)]
		asked++
		if err := svc.ExpectFollowup(ctx, id, next); err != nil {
			return err
		}
		if err := say(ctx, svc, id, next, script.InterviewerName); err != nil {
			return err
		}
		if live, err := svc.Snapshot(ctx, id); err == nil && live.Stage == interview.StageCodingSession {
			printExit(interview.Decision{Stage: live.Stage, ExitReason: live.ExitReason})
			return nil
		}
	}
}

func say(ctx context.Context, svc *service.InterviewService, id, text, interviewer string) error {
	color.Cyan("%s: %s", interviewer, text)
	outcome, live, err := svc.AssistantFinalized(ctx, id, text)
	if err != nil {
		return err
	}
	if outcome != interview.OutcomeAdvanced {
		color.Yellow("  (guion: %s en %s)", outcome, live.Session.Stage())
	}
	return nil
}

// answer lee una linea; los comandos no se envian como turno del candidato.
func answer(ctx context.Context, svc *service.InterviewService, reader *bufio.Reader, id string) (string, error) {
	fmt.Print(color.GreenString("Tu: "))
	text := readLine(reader)
	if strings.HasPrefix(text, "/") {
		return text, nil
	}
	_, live, err := svc.UserFinalized(ctx, id, text)
	if err != nil {
		return "", err
	}
	color.HiBlack("  [%s]", live.Session.Stage())
	return text, nil
}

func readLine(reader *bufio.Reader) string {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "/end"
	}
	return strings.TrimSpace(line)
}

func printObservations(d interview.Decision) {
	for _, o := range d.Observations {
		fmt.Printf("  %-12s rating=%.2f weight=%.2f\n", o.Trait, o.NormalizedRating, o.Weight)
	}
	if d.Unproductive {
		color.Yellow("  turno sin evidencia")
	}
}

func printExit(d interview.Decision) {
	color.Green("==> %s (%s)", d.Stage, d.ExitReason)
}

func printSnapshot(snap interview.SessionSnapshot) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		color.Red("snapshot: %v", err)
		return
	}
	color.Magenta("Estado final:")
	fmt.Println(string(data))
}
