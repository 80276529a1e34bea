package controllers

import (
	"strconv"
	"strings"
	"time"
	"ytcatalog-backend/internal/apperrors"
	"ytcatalog-backend/internal/models"
)

// Envelope is the body of every API response.
type Envelope struct {
	Ok       bool                   `json:"ok"`
	Missatge string                 `json:"missatge"`
	Resultat any                    `json:"resultat,omitempty"`
	Detalls  []apperrors.FieldError `json:"detalls,omitempty"`
}

func success(msg string, resultat any) Envelope {
	return Envelope{Ok: true, Missatge: msg, Resultat: resultat}
}

// ID accepts a JSON number or a numeric string. Null, "" and 0 decode to 0.
type ID uint

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*id = ID(n)
	return nil
}

type CreateLlistaRequest struct {
	Nom        string `json:"nom" example:"Per veure"`
	Descripcio string `json:"descripcio" example:"Vídeos pendents"`
}

type AddVideoRequest struct {
	LlistaId ID `json:"llistaId" example:"1"`
	VideoId  ID `json:"videoId" example:"3"`
}

type CreateUsuariRequest struct {
	Username string `json:"username" example:"anna"`
	Email    string `json:"email" example:"anna@example.com"`
	Password string `json:"password" example:"secret123"`
	Nom      string `json:"nom" example:"Anna Puig"`
	Idioma   string `json:"idioma" example:"ca"`
}

type LoginRequest struct {
	Username string `json:"username" example:"anna"`
	Password string `json:"password" example:"secret123"`
}

type LoginResponse struct {
	Token   string         `json:"token"`
	Expires time.Time      `json:"expires"`
	Usuari  UsuariResponse `json:"usuari"`
}

type UsuariResponse struct {
	Id           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Nom          string    `json:"nom"`
	Idioma       string    `json:"idioma"`
	DataRegistre time.Time `json:"data_registre"`
}

func newUsuariResponse(u *models.Usuari) UsuariResponse {
	return UsuariResponse{
		Id:           u.Id,
		Username:     u.Username,
		Email:        u.Email,
		Nom:          u.Nom,
		Idioma:       u.Idioma,
		DataRegistre: u.DataRegistre,
	}
}

type ComentariResponse struct {
	Id          uint                   `json:"id"`
	Text        string                 `json:"text"`
	DataCreacio time.Time              `json:"data_creacio"`
	Video       *ComentariVideoSummary `json:"video"`
}

type ComentariVideoSummary struct {
	Id       uint             `json:"id"`
	Titol    string           `json:"titol"`
	UrlVideo string           `json:"url_video"`
	Youtuber *YoutuberSummary `json:"youtuber"`
}

type YoutuberSummary struct {
	NomCanal string `json:"nom_canal"`
}

func newComentariResponse(c models.Comentari) ComentariResponse {
	resp := ComentariResponse{Id: c.Id, Text: c.Comentari, DataCreacio: c.CreatedAt}
	if c.Video != nil {
		resp.Video = &ComentariVideoSummary{Id: c.Video.Id, Titol: c.Video.Titol, UrlVideo: c.Video.UrlVideo}
		if c.Video.Youtuber != nil {
			resp.Video.Youtuber = &YoutuberSummary{NomCanal: c.Video.Youtuber.NomCanal}
		}
	}
	return resp
}

type VideoResponse struct {
	models.Video
	Categories []models.Categoria `json:"categories"`
}
