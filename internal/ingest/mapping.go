package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ytcatalog-backend/internal/auth"
	"ytcatalog-backend/internal/models"
	"ytcatalog-backend/internal/schema"
)

// Mapping describes how one CSV file becomes rows of one entity. Columns maps
// CSV header names to entity field names; columns not listed are ignored.
type Mapping struct {
	Entity  string
	File    string
	Columns map[string]string
	Build   func(fields map[string]string) (any, error)
}

// Translate renames the row's columns to entity field names.
func (m Mapping) Translate(row Row) map[string]string {
	out := make(map[string]string, len(m.Columns))
	for col, field := range m.Columns {
		if v, ok := row.Values[col]; ok {
			out[field] = v
		}
	}
	return out
}

// DefaultStages lists the catalogue files in load order.
func DefaultStages() []Mapping {
	return []Mapping{
		{
			Entity: schema.Youtuber,
			File:   "youtubers.csv",
			Columns: map[string]string{
				"id":            "id",
				"channel_name":  "nom_canal",
				"youtuber_name": "nom_youtuber",
				"description":   "descripcio",
				"channel_url":   "url_canal",
			},
			Build: buildYoutuber,
		},
		{
			Entity: schema.PerfilYoutuber,
			File:   "youtuber_profiles.csv",
			Columns: map[string]string{
				"id":            "id",
				"youtuber_id":   "youtuber_id",
				"twitter_url":   "url_twitter",
				"instagram_url": "url_instagram",
				"website_url":   "url_web",
				"contact_info":  "informacio_contacte",
			},
			Build: buildPerfil,
		},
		{
			Entity: schema.Categoria,
			File:   "categories.csv",
			Columns: map[string]string{
				"id":          "id",
				"name":        "titol",
				"description": "descripcio",
			},
			Build: buildCategoria,
		},
		{
			Entity: schema.Video,
			File:   "videos.csv",
			Columns: map[string]string{
				"id":               "id",
				"youtuber_id":      "youtuber_id",
				"title":            "titol",
				"description":      "descripcio",
				"video_url":        "url_video",
				"publication_date": "data_publicacio",
				"views":            "visualitzacions",
				"likes":            "likes",
			},
			Build: buildVideo,
		},
		{
			Entity: schema.VideoCategoria,
			File:   "video_categories.csv",
			Columns: map[string]string{
				"video_id":    "video_id",
				"category_id": "categoria_id",
			},
			Build: buildVideoCategoria,
		},
		{
			Entity: schema.Llista,
			File:   "llistes.csv",
			Columns: map[string]string{
				"id":         "id",
				"nom_llista": "nom_llista",
				"descripcio": "descripcio",
			},
			Build: buildLlista,
		},
		{
			Entity: schema.Usuari,
			File:   "usuaris.csv",
			Columns: map[string]string{
				"username":      "username",
				"email":         "email",
				"password":      "password",
				"nom":           "nom",
				"data_registre": "data_registre",
				"idioma":        "idioma",
			},
			Build: buildUsuari,
		},
		{
			Entity: schema.Comentari,
			File:   "videosComentaris.csv",
			Columns: map[string]string{
				"videoId":   "video_id",
				"userId":    "usuari_id",
				"comentari": "comentari",
			},
			Build: buildComentari,
		},
		{
			Entity: schema.Valoracio,
			File:   "videosValoracions.csv",
			Columns: map[string]string{
				"videoId": "video_id",
				"userId":  "usuari_id",
				"esLike":  "es_like",
			},
			Build: buildValoracio,
		},
	}
}

func buildYoutuber(f map[string]string) (any, error) {
	id, err := optionalID(f, "id")
	if err != nil {
		return nil, err
	}
	return &models.Youtuber{
		Id:          id,
		NomCanal:    f["nom_canal"],
		NomYoutuber: f["nom_youtuber"],
		Descripcio:  f["descripcio"],
		UrlCanal:    f["url_canal"],
	}, nil
}

func buildPerfil(f map[string]string) (any, error) {
	id, err := optionalID(f, "id")
	if err != nil {
		return nil, err
	}
	youtuberID, err := requiredID(f, "youtuber_id")
	if err != nil {
		return nil, err
	}
	return &models.PerfilYoutuber{
		Id:                 id,
		YoutuberId:         youtuberID,
		UrlTwitter:         f["url_twitter"],
		UrlInstagram:       f["url_instagram"],
		UrlWeb:             f["url_web"],
		InformacioContacte: f["informacio_contacte"],
	}, nil
}

func buildCategoria(f map[string]string) (any, error) {
	id, err := optionalID(f, "id")
	if err != nil {
		return nil, err
	}
	return &models.Categoria{Id: id, Titol: f["titol"], Descripcio: f["descripcio"]}, nil
}

func buildVideo(f map[string]string) (any, error) {
	id, err := optionalID(f, "id")
	if err != nil {
		return nil, err
	}
	youtuberID, err := requiredID(f, "youtuber_id")
	if err != nil {
		return nil, err
	}
	published, err := parseDate(f["data_publicacio"])
	if err != nil {
		return nil, fmt.Errorf("data_publicacio: %w", err)
	}
	views, err := parseCount(f["visualitzacions"])
	if err != nil {
		return nil, fmt.Errorf("visualitzacions: %w", err)
	}
	likes, err := parseCount(f["likes"])
	if err != nil {
		return nil, fmt.Errorf("likes: %w", err)
	}
	return &models.Video{
		Id:              id,
		YoutuberId:      youtuberID,
		Titol:           f["titol"],
		Descripcio:      f["descripcio"],
		UrlVideo:        f["url_video"],
		DataPublicacio:  published,
		Visualitzacions: views,
		Likes:           likes,
	}, nil
}

func buildVideoCategoria(f map[string]string) (any, error) {
	videoID, err := requiredID(f, "video_id")
	if err != nil {
		return nil, err
	}
	categoriaID, err := requiredID(f, "categoria_id")
	if err != nil {
		return nil, err
	}
	return &models.VideoCategoria{VideoId: videoID, CategoriaId: categoriaID}, nil
}

func buildLlista(f map[string]string) (any, error) {
	id, err := optionalID(f, "id")
	if err != nil {
		return nil, err
	}
	return &models.Llista{Id: id, NomLlista: f["nom_llista"], Descripcio: f["descripcio"]}, nil
}

func buildUsuari(f map[string]string) (any, error) {
	if strings.TrimSpace(f["password"]) == "" {
		return nil, fmt.Errorf("password is required")
	}
	hash, err := auth.HashPassword(f["password"])
	if err != nil {
		return nil, err
	}

	registered := time.Now()
	if t, err := parseDate(f["data_registre"]); err != nil {
		return nil, fmt.Errorf("data_registre: %w", err)
	} else if t != nil {
		registered = *t
	}

	return &models.Usuari{
		Username:     f["username"],
		Email:        f["email"],
		Password:     hash,
		Nom:          f["nom"],
		DataRegistre: registered,
		Idioma:       f["idioma"],
	}, nil
}

func buildComentari(f map[string]string) (any, error) {
	videoID, err := requiredID(f, "video_id")
	if err != nil {
		return nil, err
	}
	usuariID, err := requiredID(f, "usuari_id")
	if err != nil {
		return nil, err
	}
	return &models.Comentari{VideoId: videoID, UsuariId: usuariID, Comentari: f["comentari"]}, nil
}

func buildValoracio(f map[string]string) (any, error) {
	videoID, err := requiredID(f, "video_id")
	if err != nil {
		return nil, err
	}
	usuariID, err := requiredID(f, "usuari_id")
	if err != nil {
		return nil, err
	}
	like, ok := parseBool(f["es_like"])
	if !ok {
		return nil, fmt.Errorf("es_like: invalid boolean %q", f["es_like"])
	}
	return &models.Valoracio{VideoId: videoID, UsuariId: usuariID, EsLike: like}, nil
}

/* ----------------------------------------
	Cell conversion
---------------------------------------- */

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// optionalID returns 0 for an empty cell so the database assigns the id.
func optionalID(f map[string]string, field string) (uint, error) {
	s := strings.TrimSpace(f[field])
	if s == "" {
		return 0, nil
	}
	return parseID(field, s)
}

func requiredID(f map[string]string, field string) (uint, error) {
	s := strings.TrimSpace(f[field])
	if s == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	return parseID(field, s)
}

func parseID(field, s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%s: invalid id %q", field, s)
	}
	return uint(n), nil
}

func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}

func parseBool(s string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}
