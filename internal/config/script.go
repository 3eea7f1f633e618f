package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"sfinx/internal/interview"
)

// ScriptFile es el formato TOML del guion de la entrevista.
//
//	interviewer = "Carrie"
//	greeting = "Hi {{candidate}}, I'm {{interviewer}}. I'll be the one interviewing today!"
//	background_question = "Tell me about a project you are proud of."
type ScriptFile struct {
	Interviewer        string `toml:"interviewer"`
	Greeting           string `toml:"greeting"`
	BackgroundQuestion string `toml:"background_question"`
}

// LoadScript lee el guion desde path. Con path vacio devuelve el guion por defecto.
// Los campos omitidos en el archivo toman el valor por defecto.
func LoadScript(path string) (interview.Script, error) {
	script := interview.DefaultScript()
	if strings.TrimSpace(path) == "" {
		return script, nil
	}

	var file ScriptFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return interview.Script{}, fmt.Errorf("decode script %s: %w", path, err)
	}
	return file.merge(script), nil
}

// ParseScript decodifica un guion TOML ya leido.
func ParseScript(data string) (interview.Script, error) {
	var file ScriptFile
	if _, err := toml.Decode(data, &file); err != nil {
		return interview.Script{}, fmt.Errorf("decode script: %w", err)
	}
	return file.merge(interview.DefaultScript()), nil
}

func (f ScriptFile) merge(base interview.Script) interview.Script {
	if v := strings.TrimSpace(f.Interviewer); v != "" {
		base.InterviewerName = v
	}
	if v := strings.TrimSpace(f.Greeting); v != "" {
		base.GreetingTemplate = v
	}
	if v := strings.TrimSpace(f.BackgroundQuestion); v != "" {
		base.BackgroundQuestion = v
	}
	return base
}
