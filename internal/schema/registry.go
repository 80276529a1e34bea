// Package schema declares the catalogue's entities and the foreign-key
// relationships between them, and keeps the database layout in sync with
// that declaration.
package schema

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ytcatalog-backend/internal/models"
)

// Entity names used across the registry, the ingestion stages and logs.
const (
	Youtuber       = "youtuber"
	PerfilYoutuber = "perfil_youtuber"
	Categoria      = "categoria"
	Video          = "video"
	VideoCategoria = "video_categoria"
	Llista         = "llista"
	LlistaVideo    = "llista_video"
	Usuari         = "usuari"
	Comentari      = "comentari"
	Valoracio      = "valoracio"
)

type RelationKind int

const (
	OneToOne RelationKind = iota + 1
	OneToMany
	ManyToMany
)

func (k RelationKind) String() string {
	switch k {
	case OneToOne:
		return "1:1"
	case OneToMany:
		return "1:N"
	case ManyToMany:
		return "N:M"
	default:
		return "unknown"
	}
}

// Relation links two entities. For OneToOne and OneToMany, From is the parent
// and ForeignKey lives on To. For ManyToMany, Through names the join entity
// that holds ForeignKey (pointing at From) and OtherKey (pointing at To).
type Relation struct {
	Kind       RelationKind
	From       string
	To         string
	ForeignKey string
	Through    string
	OtherKey   string
}

type Entity struct {
	Name  string
	Table string
	Model any
}

// Registry is built once by New and is read-only afterwards.
type Registry struct {
	entities  []Entity
	index     map[string]int
	relations []Relation
}

// New builds the catalogue registry. Entities are listed parents first.
func New() *Registry {
	entities := []Entity{
		{Name: Youtuber, Table: models.Youtuber{}.TableName(), Model: &models.Youtuber{}},
		{Name: PerfilYoutuber, Table: models.PerfilYoutuber{}.TableName(), Model: &models.PerfilYoutuber{}},
		{Name: Categoria, Table: models.Categoria{}.TableName(), Model: &models.Categoria{}},
		{Name: Video, Table: models.Video{}.TableName(), Model: &models.Video{}},
		{Name: VideoCategoria, Table: models.VideoCategoria{}.TableName(), Model: &models.VideoCategoria{}},
		{Name: Llista, Table: models.Llista{}.TableName(), Model: &models.Llista{}},
		{Name: LlistaVideo, Table: models.LlistaVideo{}.TableName(), Model: &models.LlistaVideo{}},
		{Name: Usuari, Table: models.Usuari{}.TableName(), Model: &models.Usuari{}},
		{Name: Comentari, Table: models.Comentari{}.TableName(), Model: &models.Comentari{}},
		{Name: Valoracio, Table: models.Valoracio{}.TableName(), Model: &models.Valoracio{}},
	}

	relations := []Relation{
		{Kind: OneToOne, From: Youtuber, To: PerfilYoutuber, ForeignKey: "youtuber_id"},
		{Kind: OneToMany, From: Youtuber, To: Video, ForeignKey: "youtuber_id"},
		{Kind: ManyToMany, From: Video, To: Categoria, Through: VideoCategoria, ForeignKey: "video_id", OtherKey: "categoria_id"},
		{Kind: ManyToMany, From: Llista, To: Video, Through: LlistaVideo, ForeignKey: "llista_id", OtherKey: "video_id"},
		{Kind: OneToMany, From: Video, To: Comentari, ForeignKey: "video_id"},
		{Kind: OneToMany, From: Usuari, To: Comentari, ForeignKey: "usuari_id"},
		{Kind: OneToMany, From: Video, To: Valoracio, ForeignKey: "video_id"},
		{Kind: OneToMany, From: Usuari, To: Valoracio, ForeignKey: "usuari_id"},
	}

	index := make(map[string]int, len(entities))
	for i, e := range entities {
		index[e.Name] = i
	}

	return &Registry{entities: entities, index: index, relations: relations}
}

func (r *Registry) Entities() []Entity {
	out := make([]Entity, len(r.entities))
	copy(out, r.entities)
	return out
}

func (r *Registry) Entity(name string) (Entity, bool) {
	i, ok := r.index[name]
	if !ok {
		return Entity{}, false
	}
	return r.entities[i], true
}

func (r *Registry) Relations() []Relation {
	out := make([]Relation, len(r.relations))
	copy(out, r.relations)
	return out
}

// Parents returns the entities that name must reference through a foreign
// key, in registry order.
func (r *Registry) Parents(name string) []string {
	seen := make(map[string]bool)
	for _, rel := range r.relations {
		switch rel.Kind {
		case OneToOne, OneToMany:
			if rel.To == name {
				seen[rel.From] = true
			}
		case ManyToMany:
			if rel.Through == name {
				seen[rel.From] = true
				seen[rel.To] = true
			}
		}
	}

	var parents []string
	for _, e := range r.entities {
		if seen[e.Name] {
			parents = append(parents, e.Name)
		}
	}
	return parents
}

// CheckOrder verifies that every entity in order comes after all of its
// parents.
func (r *Registry) CheckOrder(order []string) error {
	position := make(map[string]int, len(order))
	for i, name := range order {
		if _, ok := r.index[name]; !ok {
			return fmt.Errorf("unknown entity %q", name)
		}
		if _, dup := position[name]; dup {
			return fmt.Errorf("entity %q listed twice", name)
		}
		position[name] = i
	}

	for i, name := range order {
		for _, parent := range r.Parents(name) {
			p, ok := position[parent]
			if !ok {
				return fmt.Errorf("entity %q depends on %q which is not in the order", name, parent)
			}
			if p > i {
				return fmt.Errorf("entity %q is ordered before its parent %q", name, parent)
			}
		}
	}
	return nil
}

// EnsureSchema makes the database layout match the registry. With
// resetExisting every declared table is dropped and recreated; otherwise only
// missing tables are created.
func (r *Registry) EnsureSchema(ctx context.Context, db *gorm.DB, resetExisting bool) error {
	migrator := db.WithContext(ctx).Migrator()

	if resetExisting {
		for i := len(r.entities) - 1; i >= 0; i-- {
			e := r.entities[i]
			if err := migrator.DropTable(e.Model); err != nil {
				return errors.Wrapf(err, "drop table %s", e.Table)
			}
		}
	}

	for _, e := range r.entities {
		if migrator.HasTable(e.Model) {
			continue
		}
		if err := migrator.CreateTable(e.Model); err != nil {
			return errors.Wrapf(err, "create table %s", e.Table)
		}
	}
	return nil
}
