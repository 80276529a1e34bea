package models

import "time"

type Youtuber struct {
	Id          uint            `gorm:"primaryKey" json:"id"`
	NomCanal    string          `gorm:"not null" json:"nom_canal"`
	NomYoutuber string          `json:"nom_youtuber"`
	Descripcio  string          `gorm:"type:text" json:"descripcio"`
	UrlCanal    string          `json:"url_canal"`
	Perfil      *PerfilYoutuber `gorm:"foreignKey:YoutuberId" json:"perfil,omitempty"`
	Videos      []Video         `gorm:"foreignKey:YoutuberId" json:"videos,omitempty"`
}

func (Youtuber) TableName() string { return "youtubers" }

type PerfilYoutuber struct {
	Id                 uint      `gorm:"primaryKey" json:"id"`
	YoutuberId         uint      `gorm:"not null;uniqueIndex" json:"youtuber_id"`
	UrlTwitter         string    `json:"url_twitter"`
	UrlInstagram       string    `json:"url_instagram"`
	UrlWeb             string    `json:"url_web"`
	InformacioContacte string    `json:"informacio_contacte"`
	Youtuber           *Youtuber `gorm:"foreignKey:YoutuberId;constraint:OnDelete:CASCADE" json:"-"`
}

func (PerfilYoutuber) TableName() string { return "perfils_youtuber" }

type Video struct {
	Id              uint       `gorm:"primaryKey" json:"id"`
	YoutuberId      uint       `gorm:"not null;index" json:"youtuber_id"`
	Titol           string     `gorm:"not null" json:"titol"`
	Descripcio      string     `gorm:"type:text" json:"descripcio"`
	UrlVideo        string     `json:"url_video"`
	DataPublicacio  *time.Time `json:"data_publicacio"`
	Visualitzacions int64      `json:"visualitzacions"`
	Likes           int64      `json:"likes"`
	Youtuber        *Youtuber  `gorm:"foreignKey:YoutuberId;constraint:OnDelete:CASCADE" json:"youtuber,omitempty"`
}

func (Video) TableName() string { return "videos" }

type Categoria struct {
	Id         uint   `gorm:"primaryKey" json:"id"`
	Titol      string `gorm:"not null" json:"titol"`
	Descripcio string `gorm:"type:text" json:"descripcio"`
}

func (Categoria) TableName() string { return "categories" }

// VideoCategoria is the video/category join row. It only carries the two keys.
type VideoCategoria struct {
	VideoId     uint       `gorm:"primaryKey;autoIncrement:false" json:"video_id"`
	CategoriaId uint       `gorm:"primaryKey;autoIncrement:false" json:"categoria_id"`
	Video       *Video     `gorm:"foreignKey:VideoId;constraint:OnDelete:CASCADE" json:"-"`
	Categoria   *Categoria `gorm:"foreignKey:CategoriaId;constraint:OnDelete:CASCADE" json:"-"`
}

func (VideoCategoria) TableName() string { return "videos_categories" }

type Llista struct {
	Id         uint   `gorm:"primaryKey" json:"id"`
	NomLlista  string `gorm:"not null" json:"nom_llista"`
	Descripcio string `gorm:"type:text" json:"descripcio"`
}

func (Llista) TableName() string { return "llista" }

// LlistaVideo links a video to a list. There is no unique constraint on the
// pair: adding the same video twice stores two rows.
type LlistaVideo struct {
	Id       uint    `gorm:"primaryKey" json:"id"`
	LlistaId uint    `gorm:"not null;index" json:"llista_id"`
	VideoId  uint    `gorm:"not null;index" json:"video_id"`
	Llista   *Llista `gorm:"foreignKey:LlistaId;constraint:OnDelete:CASCADE" json:"-"`
	Video    *Video  `gorm:"foreignKey:VideoId;constraint:OnDelete:CASCADE" json:"-"`
}

func (LlistaVideo) TableName() string { return "llistes_videos" }

type Usuari struct {
	Id           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	Password     string    `gorm:"not null" json:"-"`
	Nom          string    `gorm:"not null" json:"nom"`
	DataRegistre time.Time `gorm:"not null" json:"data_registre"`
	Idioma       string    `gorm:"not null" json:"idioma"`
}

func (Usuari) TableName() string { return "usuaris" }

type Comentari struct {
	Id        uint      `gorm:"primaryKey" json:"id"`
	VideoId   uint      `gorm:"not null;uniqueIndex:idx_comentari_video_usuari" json:"video_id"`
	UsuariId  uint      `gorm:"not null;uniqueIndex:idx_comentari_video_usuari" json:"usuari_id"`
	Comentari string    `gorm:"type:text;not null" json:"comentari"`
	CreatedAt time.Time `json:"data_creacio"`
	Video     *Video    `gorm:"foreignKey:VideoId;constraint:OnDelete:CASCADE" json:"video,omitempty"`
	Usuari    *Usuari   `gorm:"foreignKey:UsuariId;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comentari) TableName() string { return "videos_comentaris" }

type Valoracio struct {
	Id       uint    `gorm:"primaryKey" json:"id"`
	VideoId  uint    `gorm:"not null;uniqueIndex:idx_valoracio_video_usuari" json:"video_id"`
	UsuariId uint    `gorm:"not null;uniqueIndex:idx_valoracio_video_usuari" json:"usuari_id"`
	EsLike   bool    `gorm:"not null" json:"es_like"`
	Video    *Video  `gorm:"foreignKey:VideoId;constraint:OnDelete:CASCADE" json:"-"`
	Usuari   *Usuari `gorm:"foreignKey:UsuariId;constraint:OnDelete:CASCADE" json:"-"`
}

func (Valoracio) TableName() string { return "videos_valoracions" }
