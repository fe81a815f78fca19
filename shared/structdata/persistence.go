package structdata

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StructureModel é o esquema do banco para uma estrutura do cenário.
type StructureModel struct {
	ID         string `gorm:"primaryKey"`
	Type       string
	Faction    string `gorm:"index"`
	X, Z       float32
	BuildTime  float32 // Segundos totais de construção (0 = já pronta)
	Elapsed    float32 // Segundos já construídos
	Paused     bool
	IsComplete bool
	UpdatedAt  time.Time
}

// ScenarioMetadata armazena informações globais do cenário no banco.
type ScenarioMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const CurrentFormatVersion = 1

// Store persiste o cenário de estruturas em SQLite.
type Store struct {
	DB *gorm.DB
}

// OpenStore abre (ou cria) o banco SQLite do cenário e roda as migrações.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	// Logger silencioso em produção
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&StructureModel{}, &ScenarioMetadata{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}

	db.Save(&ScenarioMetadata{Key: "FormatVersion", Value: fmt.Sprint(CurrentFormatVersion)})

	log.Printf("[Persistence] Banco de dados SQLite aberto: %s", path)
	return &Store{DB: db}, nil
}

// Save faz upsert de uma estrutura.
func (s *Store) Save(m *StructureModel) error {
	if s.DB == nil {
		return errors.New("banco de dados não inicializado")
	}
	if err := s.DB.Save(m).Error; err != nil {
		return fmt.Errorf("falha ao salvar estrutura %s: %w", m.ID, err)
	}
	return nil
}

// Get carrega uma estrutura pelo id.
func (s *Store) Get(id string) (*StructureModel, error) {
	var m StructureModel
	if err := s.DB.First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// All retorna todas as estruturas ordenadas por id.
func (s *Store) All() ([]StructureModel, error) {
	var out []StructureModel
	if err := s.DB.Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete remove uma estrutura. Remover um id inexistente não é erro.
func (s *Store) Delete(id string) error {
	return s.DB.Delete(&StructureModel{}, "id = ?", id).Error
}

// Count retorna quantas estruturas existem no cenário.
func (s *Store) Count() (int64, error) {
	var n int64
	err := s.DB.Model(&StructureModel{}).Count(&n).Error
	return n, err
}

// Close fecha a conexão com o banco.
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Progress retorna a fração construída em [0,1].
func (m *StructureModel) Progress() float32 {
	if m.IsComplete || m.BuildTime <= 0 {
		return 1
	}
	p := m.Elapsed / m.BuildTime
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// Remaining retorna os segundos restantes de construção.
func (m *StructureModel) Remaining() float32 {
	if m.IsComplete {
		return 0
	}
	r := m.BuildTime - m.Elapsed
	if r < 0 {
		return 0
	}
	return r
}

// Data converte o registro para o formato compartilhado com o cliente.
func (m *StructureModel) Data() StructureData {
	return StructureData{
		ID:         m.ID,
		Type:       m.Type,
		Faction:    m.Faction,
		Position:   Position{X: m.X, Z: m.Z},
		IsComplete: m.IsComplete,
	}
}
