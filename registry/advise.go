package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/fiche-dentaire/logging"
	"github.com/giygas/fiche-dentaire/metrics"
)

// Level is the outcome of an advisory lookup
type Level string

const (
	LevelOK      Level = "ok"
	LevelWarning Level = "warning"
	LevelSkipped Level = "skipped"
)

// Advisory is what the practitioner sees after a medication lookup
type Advisory struct {
	Level   Level           `json:"level"`
	Message string          `json:"message"`
	Info    *ValidationInfo `json:"info,omitempty"`
}

// Validator is anything that can look a medication up
type Validator interface {
	Validate(ctx context.Context, name string) (*ValidationInfo, error)
}

// New returns a Validator for cfg, or nil when no registry is configured
func New(cfg Config) (Validator, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, nil
	}
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Advise looks name up and turns any outcome into an advisory. It never
// fails: a failed lookup gives exactly one warning, logged once.
func Advise(ctx context.Context, v Validator, name string) Advisory {
	name = strings.TrimSpace(name)

	var a Advisory
	switch {
	case name == "":
		a = Advisory{Level: LevelSkipped, Message: "Aucun médicament à vérifier."}
	case v == nil:
		a = Advisory{Level: LevelSkipped, Message: "Vérification des médicaments non configurée."}
	default:
		a = advise(ctx, v, name)
	}

	metrics.DrugValidations.WithLabelValues(string(a.Level)).Inc()
	return a
}

func advise(ctx context.Context, v Validator, name string) Advisory {
	info, err := v.Validate(ctx, name)
	if err == nil {
		logging.Debug("Medication validated", "name", name, "matches", info.Matches)
		return Advisory{Level: LevelOK, Message: "Médicament validé dans le registre.", Info: info}
	}

	var (
		apiErr  *APIError
		connErr *ConnectionError
		message string
	)
	switch {
	case errors.Is(err, ErrNotFound):
		message = "Médicament non trouvé dans le registre."
	case errors.As(err, &apiErr):
		message = fmt.Sprintf("Erreur API du registre : %d", apiErr.StatusCode)
	case errors.As(err, &connErr):
		message = fmt.Sprintf("Erreur de connexion au registre : %v", connErr.Err)
	default:
		message = fmt.Sprintf("Vérification du médicament impossible : %v", err)
	}

	logging.Warn("Medication lookup failed", "name", name, "error", err)
	return Advisory{Level: LevelWarning, Message: message}
}
