package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ManifestFile é o nome do manifesto de modelos de estruturas dentro da pasta de config.
const ManifestFile = "structure_meshes.json"

// --- Estruturas JSON ---

// MeshEntry conecta tokens de estrutura a um arquivo de modelo 3D.
type MeshEntry struct {
	File    string   `json:"file"`
	Tokens  []string `json:"tokens"`
	Comment string   `json:"comment,omitempty"`
}

// StructureMeshConfig é o root do structure_meshes.json
type StructureMeshConfig struct {
	StructureMeshes []MeshEntry `json:"structureMeshes"`
}

const manifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["structureMeshes"],
  "additionalProperties": false,
  "properties": {
    "structureMeshes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["file", "tokens"],
        "additionalProperties": false,
        "properties": {
          "file":    {"type": "string", "minLength": 1},
          "tokens":  {"type": "array", "minItems": 1, "items": {"type": "string", "pattern": "^(\\*|[A-Z0-9_]+)(:(\\*|[A-Z0-9_]+))*$"}},
          "comment": {"type": "string"}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("structure_meshes.schema.json", manifestSchema)

// --- Manager ---

// Manager responde qual modelo usar para cada token de estrutura.
type Manager struct {
	modelsDir string
	meshes    []MeshEntry
}

// NewManager carrega e valida o manifesto em configDir. Os caminhos de modelo
// retornados são relativos a modelsDir.
func NewManager(configDir, modelsDir string) (*Manager, error) {
	path := filepath.Join(configDir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler %s: %w", ManifestFile, err)
	}
	m, err := Parse(data, modelsDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// NewEmptyManager cria um manifesto vazio: toda consulta cai no visual procedural.
func NewEmptyManager(modelsDir string) *Manager {
	return &Manager{modelsDir: modelsDir}
}

// Parse valida o JSON contra o schema e monta o Manager.
func Parse(data []byte, modelsDir string) (*Manager, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("falha ao parsear manifesto: %w", err)
	}
	if err := compiledSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("manifesto inválido: %w", err)
	}

	var conf StructureMeshConfig
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("falha ao parsear manifesto: %w", err)
	}

	// Um mesmo padrão em duas entradas tornaria a escolha ambígua.
	var errs []error
	seen := make(map[string]string)
	for _, e := range conf.StructureMeshes {
		for _, tok := range e.Tokens {
			if prev, dup := seen[tok]; dup {
				errs = append(errs, fmt.Errorf("token %q em %q e %q", tok, prev, e.File))
				continue
			}
			seen[tok] = e.File
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("manifesto inválido: %w", err)
	}

	return &Manager{modelsDir: modelsDir, meshes: conf.StructureMeshes}, nil
}

// --- Wildcard Matching ---

// matchToken compara um token de consulta contra um padrão com suporte a wildcards (*)
// Formato do token: segmentos separados por ':' ("SUPPLY", "SUPPLY:PROTOSS")
// O wildcard '*' em qualquer segmento aceita qualquer valor
func matchToken(pattern, query string) bool {
	if pattern == "*" {
		return true
	}

	patParts := strings.Split(pattern, ":")
	queryParts := strings.Split(query, ":")
	if len(patParts) != len(queryParts) {
		return false
	}

	for i := range patParts {
		if patParts[i] == "*" {
			continue
		}
		if patParts[i] != queryParts[i] {
			return false
		}
	}
	return true
}

// specificityScore calcula a "especificidade" de um padrão
// Quanto mais segmentos NÃO são wildcard, mais específico é
func specificityScore(pattern string) int {
	if pattern == "*" {
		return 0
	}
	score := 0
	for _, p := range strings.Split(pattern, ":") {
		if p != "*" {
			score++
		}
	}
	return score
}

// --- Consultas Públicas ---

// GetStructureMesh retorna a entrada mais específica para o token, ou nil.
func (m *Manager) GetStructureMesh(token string) *MeshEntry {
	var bestMatch *MeshEntry
	bestScore := -1

	for i := range m.meshes {
		entry := &m.meshes[i]
		for _, pat := range entry.Tokens {
			if matchToken(pat, token) {
				if score := specificityScore(pat); score > bestScore {
					bestScore = score
					bestMatch = entry
				}
			}
		}
	}
	return bestMatch
}

// StructureModel retorna o caminho do modelo para o token de um tipo canônico.
func (m *Manager) StructureModel(token string) (string, bool) {
	entry := m.GetStructureMesh(token)
	if entry == nil {
		return "", false
	}
	return filepath.Join(m.modelsDir, entry.File), true
}

// GetAllStructureMeshes retorna todas as entradas carregadas
func (m *Manager) GetAllStructureMeshes() []MeshEntry {
	return m.meshes
}
