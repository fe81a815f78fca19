package structures

import (
	"errors"
	"fmt"
)

// Erros de uso: operação chamada no estado errado ou com id desconhecido.
// São reportados (log + métrica) e tratados como no-op; nunca são fatais.
var (
	ErrUnknownStructure     = errors.New("estrutura desconhecida")
	ErrDuplicateStructure   = errors.New("estrutura já existe")
	ErrNotUnderConstruction = errors.New("estrutura não está em construção")
	ErrRemoved              = errors.New("estrutura já removida")
	ErrInvalidStructure     = errors.New("dados de estrutura inválidos")
)

// AssetLoadError é retornado pelo AssetLoader quando um modelo não pode ser produzido
// (arquivo ausente, corrompido ou inacessível).
type AssetLoadError struct {
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("falha ao carregar asset %q: %v", e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Err
}

// usageReason retorna o rótulo curto do erro de uso, usado como atributo de métrica.
func usageReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownStructure):
		return "unknown"
	case errors.Is(err, ErrDuplicateStructure):
		return "duplicate"
	case errors.Is(err, ErrNotUnderConstruction):
		return "not_under_construction"
	case errors.Is(err, ErrRemoved):
		return "removed"
	case errors.Is(err, ErrInvalidStructure):
		return "invalid"
	default:
		return "other"
	}
}
