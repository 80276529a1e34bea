package repository

import (
	"context"
	"errors"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"reflect"
	"strings"
	"time"
	"ytcatalog-backend/internal/apperrors"
	"ytcatalog-backend/internal/auth"
	"ytcatalog-backend/internal/models"
)

const (
	msgMissingUsuari     = "Falten dades obligatòries: username, email, password, nom, idioma"
	msgShortUsername     = "El nom d'usuari ha de tenir almenys 3 caràcters"
	msgDuplicateUsuari   = "Ja existeix un usuari amb aquest nom d'usuari o email"
	msgDuplicateUsername = "Aquest nom d'usuari ja està registrat"
	msgDuplicateEmail    = "Aquest email ja està registrat"
	msgMissingLlista     = "Falten dades obligatòries: nom i descripció"
	msgLlistaNotFound    = "No s’ha trobat la llista especificada"
	msgVideoNotFound     = "No s’ha trobat el vídeo especificat"
	msgUsuariNotFound    = "No s'ha trobat l'usuari especificat"
	msgYoutuberNotFound  = "No s'ha trobat el youtuber especificat"
	msgBadCredentials    = "Credencials incorrectes"
	msgRequiredField     = "Camp obligatori"
)

// Repository is the data access layer over the catalogue tables. It holds no
// state besides the connection pool.
type Repository struct {
	db       *gorm.DB
	validate *validator.Validate
}

func New(db *gorm.DB) *Repository {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Repository{db: db, validate: v}
}

// Ping checks that the database answers.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type NewUsuari struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Nom      string `json:"nom" validate:"required"`
	Idioma   string `json:"idioma" validate:"required"`
}

type NewLlista struct {
	Nom        string `json:"nom" validate:"required"`
	Descripcio string `json:"descripcio" validate:"required"`
}

/* ----------------------------------------
	Llistes
---------------------------------------- */

func (r *Repository) AllLlistes(ctx context.Context) ([]models.Llista, error) {
	var llistes []models.Llista
	if err := r.db.WithContext(ctx).Order("id").Find(&llistes).Error; err != nil {
		return nil, apperrors.NewStorage("list llistes", err)
	}
	return llistes, nil
}

func (r *Repository) CreateLlista(ctx context.Context, in NewLlista) (*models.Llista, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, validationError(err, msgMissingLlista)
	}

	llista := models.Llista{NomLlista: in.Nom, Descripcio: in.Descripcio}
	if err := r.db.WithContext(ctx).Create(&llista).Error; err != nil {
		return nil, apperrors.NewStorage("create llista", err)
	}
	return &llista, nil
}

// AddVideoToLlista links an existing video to an existing list and returns
// the list. Adding the same video twice stores a second link.
func (r *Repository) AddVideoToLlista(ctx context.Context, llistaID, videoID uint) (*models.Llista, error) {
	db := r.db.WithContext(ctx)

	var llista models.Llista
	if err := db.First(&llista, llistaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("llista", msgLlistaNotFound)
		}
		return nil, apperrors.NewStorage("find llista", err)
	}

	var video models.Video
	if err := db.First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("video", msgVideoNotFound)
		}
		return nil, apperrors.NewStorage("find video", err)
	}

	link := models.LlistaVideo{LlistaId: llista.Id, VideoId: video.Id}
	if err := db.Create(&link).Error; err != nil {
		return nil, apperrors.NewStorage("add video to llista", err)
	}
	return &llista, nil
}

func (r *Repository) VideosOfLlista(ctx context.Context, llistaID uint) ([]models.Video, error) {
	var videos []models.Video
	err := r.db.WithContext(ctx).
		Joins("JOIN llistes_videos ON llistes_videos.video_id = videos.id").
		Where("llistes_videos.llista_id = ?", llistaID).
		Order("llistes_videos.id").
		Find(&videos).Error
	if err != nil {
		return nil, apperrors.NewStorage("list videos of llista", err)
	}
	return videos, nil
}

/* ----------------------------------------
	Usuaris
---------------------------------------- */

// CreateUsuari validates the input, rejects a username or email that is
// already taken and stores the user with a hashed password.
func (r *Repository) CreateUsuari(ctx context.Context, in NewUsuari) (*models.Usuari, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, validationError(err, msgMissingUsuari)
	}

	if dup, err := r.duplicateUsuari(ctx, in.Username, in.Email); err != nil {
		return nil, err
	} else if dup != nil {
		return nil, dup
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.NewStorage("hash password", err)
	}

	usuari := models.Usuari{
		Username:     in.Username,
		Email:        in.Email,
		Password:     hash,
		Nom:          in.Nom,
		Idioma:       in.Idioma,
		DataRegistre: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&usuari).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent insert
			if dup, lookupErr := r.duplicateUsuari(ctx, in.Username, in.Email); lookupErr == nil && dup != nil {
				return nil, dup
			}
			return nil, &apperrors.DuplicateError{Message: msgDuplicateUsuari}
		}
		return nil, apperrors.NewStorage("create usuari", err)
	}
	return &usuari, nil
}

func (r *Repository) duplicateUsuari(ctx context.Context, username, email string) (*apperrors.DuplicateError, error) {
	var existing []models.Usuari
	err := r.db.WithContext(ctx).
		Select("id", "username", "email").
		Where("username = ? OR email = ?", username, email).
		Find(&existing).Error
	if err != nil {
		return nil, apperrors.NewStorage("lookup usuari", err)
	}
	if len(existing) == 0 {
		return nil, nil
	}

	var usernameTaken, emailTaken bool
	for _, u := range existing {
		usernameTaken = usernameTaken || u.Username == username
		emailTaken = emailTaken || u.Email == email
	}

	dup := &apperrors.DuplicateError{Message: msgDuplicateUsuari}
	if usernameTaken {
		dup.Details = append(dup.Details, apperrors.FieldError{Camp: "username", Error: msgDuplicateUsername})
	}
	if emailTaken {
		dup.Details = append(dup.Details, apperrors.FieldError{Camp: "email", Error: msgDuplicateEmail})
	}
	return dup, nil
}

// Authenticate returns the user when the password matches its stored hash.
func (r *Repository) Authenticate(ctx context.Context, username, password string) (*models.Usuari, error) {
	var usuari models.Usuari
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&usuari).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.UnauthorizedError{Message: msgBadCredentials}
	}
	if err != nil {
		return nil, apperrors.NewStorage("find usuari", err)
	}

	if !auth.CheckPassword(usuari.Password, password) {
		return nil, &apperrors.UnauthorizedError{Message: msgBadCredentials}
	}
	return &usuari, nil
}

func (r *Repository) FindUsuari(ctx context.Context, id uint) (*models.Usuari, error) {
	var usuari models.Usuari
	if err := r.db.WithContext(ctx).First(&usuari, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("usuari", msgUsuariNotFound)
		}
		return nil, apperrors.NewStorage("find usuari", err)
	}
	return &usuari, nil
}

// ComentarisByUsuari returns the user's comments, oldest first, each with its
// video and the video's youtuber loaded.
func (r *Repository) ComentarisByUsuari(ctx context.Context, usuariID uint) ([]models.Comentari, error) {
	if _, err := r.FindUsuari(ctx, usuariID); err != nil {
		return nil, err
	}

	var comentaris []models.Comentari
	err := r.db.WithContext(ctx).
		Preload("Video.Youtuber").
		Where("usuari_id = ?", usuariID).
		Order("id").
		Find(&comentaris).Error
	if err != nil {
		return nil, apperrors.NewStorage("list comentaris", err)
	}
	return comentaris, nil
}

/* ----------------------------------------
	Catalogue reads
---------------------------------------- */

func (r *Repository) AllYoutubers(ctx context.Context) ([]models.Youtuber, error) {
	var youtubers []models.Youtuber
	if err := r.db.WithContext(ctx).Order("id").Find(&youtubers).Error; err != nil {
		return nil, apperrors.NewStorage("list youtubers", err)
	}
	return youtubers, nil
}

// FindYoutuber loads the youtuber with its profile and videos.
func (r *Repository) FindYoutuber(ctx context.Context, id uint) (*models.Youtuber, error) {
	var youtuber models.Youtuber
	err := r.db.WithContext(ctx).
		Preload("Perfil").
		Preload("Videos", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&youtuber, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("youtuber", msgYoutuberNotFound)
		}
		return nil, apperrors.NewStorage("find youtuber", err)
	}
	return &youtuber, nil
}

func (r *Repository) AllVideos(ctx context.Context) ([]models.Video, error) {
	var videos []models.Video
	if err := r.db.WithContext(ctx).Preload("Youtuber").Order("id").Find(&videos).Error; err != nil {
		return nil, apperrors.NewStorage("list videos", err)
	}
	return videos, nil
}

func (r *Repository) FindVideo(ctx context.Context, id uint) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).Preload("Youtuber").First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("video", msgVideoNotFound)
		}
		return nil, apperrors.NewStorage("find video", err)
	}
	return &video, nil
}

func (r *Repository) CategoriesOfVideo(ctx context.Context, videoID uint) ([]models.Categoria, error) {
	var categories []models.Categoria
	err := r.db.WithContext(ctx).
		Joins("JOIN videos_categories ON videos_categories.categoria_id = categories.id").
		Where("videos_categories.video_id = ?", videoID).
		Order("categories.id").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.NewStorage("list categories of video", err)
	}
	return categories, nil
}

func (r *Repository) AllCategories(ctx context.Context) ([]models.Categoria, error) {
	var categories []models.Categoria
	if err := r.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, apperrors.NewStorage("list categories", err)
	}
	return categories, nil
}

// validationError turns validator output into a ValidationError. Missing
// fields take precedence over other rule failures.
func validationError(err error, missingMsg string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidation(err.Error())
	}

	var missing, invalid []apperrors.FieldError
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, apperrors.FieldError{Camp: fe.Field(), Error: msgRequiredField})
			continue
		}
		if fe.Field() == "username" && fe.Tag() == "min" {
			invalid = append(invalid, apperrors.FieldError{Camp: fe.Field(), Error: msgShortUsername})
			continue
		}
		invalid = append(invalid, apperrors.FieldError{Camp: fe.Field(), Error: fe.Error()})
	}

	if len(missing) > 0 {
		return apperrors.NewValidation(missingMsg, missing...)
	}
	if len(invalid) == 1 && invalid[0].Camp == "username" {
		return apperrors.NewValidation(msgShortUsername, invalid...)
	}
	return apperrors.NewValidation("Les dades proporcionades no compleixen els requisits", invalid...)
}
