package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ytcatalog-backend/internal/auth"
	"ytcatalog-backend/internal/config"
	"ytcatalog-backend/internal/controllers"
	"ytcatalog-backend/internal/models"
	"ytcatalog-backend/internal/repository"
	"ytcatalog-backend/internal/telemetry"
	"ytcatalog-backend/internal/testutil"
)

type envelope struct {
	Ok       bool            `json:"ok"`
	Missatge string          `json:"missatge"`
	Resultat json.RawMessage `json:"resultat"`
	Detalls  []struct {
		Camp  string `json:"camp"`
		Error string `json:"error"`
	} `json:"detalls"`
}

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	log := zap.NewNop()

	tel, err := telemetry.NewTelemetry(log)
	require.NoError(t, err)

	h := controllers.NewController(repository.New(db), auth.NewTokens("test-secret", time.Hour), log)
	app := New(config.ServerConfig{CORSOrigins: []string{"http://localhost:5173"}}, h, tel, log)
	return app, db
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.Youtuber{Id: 1, NomCanal: "Hola Mundo"}).Error)
	require.NoError(t, db.Create(&models.Video{Id: 3, YoutuberId: 1, Titol: "Curs de JavaScript", UrlVideo: "https://youtu.be/e3x1W9r9-rk"}).Error)
	require.NoError(t, db.Create(&models.Categoria{Id: 1, Titol: "JavaScript"}).Error)
	require.NoError(t, db.Create(&models.VideoCategoria{VideoId: 3, CategoriaId: 1}).Error)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	}
	return resp, env
}

func TestLlistaEndpoints(t *testing.T) {
	app, db := setupTestApp(t)
	seed(t, db)

	resp, env := doJSON(t, app, http.MethodPost, "/api/llista/createLlista", map[string]any{
		"nom":        "Per veure",
		"descripcio": "Pendents",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "expected status 201")
	require.True(t, env.Ok)
	require.Equal(t, "Llista creada amb èxit", env.Missatge)

	var llista models.Llista
	require.NoError(t, json.Unmarshal(env.Resultat, &llista))
	require.Equal(t, "Per veure", llista.NomLlista)

	resp, env = doJSON(t, app, http.MethodGet, "/api/llista", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Llistes obtingudes amb èxit", env.Missatge)
	var llistes []models.Llista
	require.NoError(t, json.Unmarshal(env.Resultat, &llistes))
	require.Len(t, llistes, 1)

	resp, env = doJSON(t, app, http.MethodPost, "/api/llista/addVideo", map[string]any{
		"llistaId": llista.Id,
		"videoId":  "3",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "numeric strings are accepted as ids")
	require.Equal(t, "Vídeo afegit a la llista amb èxit", env.Missatge)
}

func TestCreateLlista_MissingField(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, env := doJSON(t, app, http.MethodPost, "/api/llista/createLlista", map[string]any{"nom": "Sense descripció"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, env.Ok)
	require.Equal(t, "Falten dades obligatòries: nom i descripció", env.Missatge)
}

func TestAddVideo_Errors(t *testing.T) {
	app, db := setupTestApp(t)
	seed(t, db)
	require.NoError(t, db.Create(&models.Llista{Id: 1, NomLlista: "Per veure", Descripcio: "Pendents"}).Error)

	resp, env := doJSON(t, app, http.MethodPost, "/api/llista/addVideo", map[string]any{"llistaId": 1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Falten dades obligatòries: llistaId i videoId", env.Missatge)

	resp, env = doJSON(t, app, http.MethodPost, "/api/llista/addVideo", map[string]any{"llistaId": 1, "videoId": 999})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "No s’ha trobat el vídeo especificat", env.Missatge)

	resp, env = doJSON(t, app, http.MethodPost, "/api/llista/addVideo", map[string]any{"llistaId": 42, "videoId": 3})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "No s’ha trobat la llista especificada", env.Missatge)

	var count int64
	require.NoError(t, db.Model(&models.LlistaVideo{}).Count(&count).Error)
	require.Zero(t, count)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/llista/addVideo", "{not json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateUsuari(t *testing.T) {
	app, _ := setupTestApp(t)

	body := map[string]any{
		"username": "anna",
		"email":    "anna@example.com",
		"password": "secret123",
		"nom":      "Anna",
		"idioma":   "ca",
	}
	resp, env := doJSON(t, app, http.MethodPost, "/api/usuaris", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "expected status 201")
	require.Equal(t, "Usuari creat amb èxit", env.Missatge)

	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Resultat, &created))
	require.Equal(t, "anna", created["username"])
	require.Contains(t, created, "data_registre")
	require.NotContains(t, created, "password")

	body["username"] = "anna2"
	resp, env = doJSON(t, app, http.MethodPost, "/api/usuaris", body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "Ja existeix un usuari amb aquest nom d'usuari o email", env.Missatge)
	require.Len(t, env.Detalls, 1)
	require.Equal(t, "email", env.Detalls[0].Camp)
	require.Equal(t, "Aquest email ja està registrat", env.Detalls[0].Error)
}

func TestCreateUsuari_Validation(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, env := doJSON(t, app, http.MethodPost, "/api/usuaris", map[string]any{"username": "anna"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Falten dades obligatòries: username, email, password, nom, idioma", env.Missatge)

	resp, env = doJSON(t, app, http.MethodPost, "/api/usuaris", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Falten dades obligatòries: username, email, password, nom, idioma", env.Missatge)

	resp, env = doJSON(t, app, http.MethodPost, "/api/usuaris", map[string]any{
		"username": "ab",
		"email":    "ab@example.com",
		"password": "secret123",
		"nom":      "AB",
		"idioma":   "ca",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "El nom d'usuari ha de tenir almenys 3 caràcters", env.Missatge)
}

func TestGetComentaris(t *testing.T) {
	app, db := setupTestApp(t)
	seed(t, db)

	resp, env := doJSON(t, app, http.MethodGet, "/api/usuaris/comentaris/abc", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "ID d'usuari invàlid", env.Missatge)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/usuaris/comentaris/7", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	u := models.Usuari{Username: "anna", Email: "anna@example.com", Password: "x", Nom: "Anna", Idioma: "ca", DataRegistre: time.Now()}
	require.NoError(t, db.Create(&u).Error)

	resp, env = doJSON(t, app, http.MethodGet, "/api/usuaris/comentaris/"+itoa(u.Id), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "No s'han trobat comentaris per aquest usuari", env.Missatge)

	require.NoError(t, db.Create(&models.Comentari{VideoId: 3, UsuariId: u.Id, Comentari: "Gran tutorial"}).Error)

	resp, env = doJSON(t, app, http.MethodGet, "/api/usuaris/comentaris/"+itoa(u.Id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Comentaris de l'usuari obtinguts amb èxit", env.Missatge)

	var comentaris []struct {
		Id    uint   `json:"id"`
		Text  string `json:"text"`
		Video struct {
			Id       uint   `json:"id"`
			Titol    string `json:"titol"`
			UrlVideo string `json:"url_video"`
			Youtuber struct {
				NomCanal string `json:"nom_canal"`
			} `json:"youtuber"`
		} `json:"video"`
	}
	require.NoError(t, json.Unmarshal(env.Resultat, &comentaris))
	require.Len(t, comentaris, 1)
	require.Equal(t, "Gran tutorial", comentaris[0].Text)
	require.Equal(t, uint(3), comentaris[0].Video.Id)
	require.Equal(t, "Hola Mundo", comentaris[0].Video.Youtuber.NomCanal)
}

func TestLoginAndMe(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/usuaris", map[string]any{
		"username": "anna",
		"email":    "anna@example.com",
		"password": "secret123",
		"nom":      "Anna",
		"idioma":   "ca",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/usuaris/me", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/usuaris/login", map[string]any{"username": "anna", "password": "bad"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/usuaris/login", map[string]any{"username": "anna"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env := doJSON(t, app, http.MethodPost, "/api/usuaris/login", map[string]any{"username": "anna", "password": "secret123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Resultat, &login))
	require.NotEmpty(t, login.Token)

	resp, env = doJSON(t, app, http.MethodGet, "/api/usuaris/me", nil, "Authorization", "Bearer "+login.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me map[string]any
	require.NoError(t, json.Unmarshal(env.Resultat, &me))
	require.Equal(t, "anna", me["username"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/usuaris/me", nil, "Authorization", "Bearer forged")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCatalogueEndpoints(t *testing.T) {
	app, db := setupTestApp(t)
	seed(t, db)

	resp, env := doJSON(t, app, http.MethodGet, "/api/youtubers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Ok)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/youtubers/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/youtubers/9", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = doJSON(t, app, http.MethodGet, "/api/videos/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var video struct {
		Titol      string `json:"titol"`
		Categories []struct {
			Titol string `json:"titol"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(env.Resultat, &video))
	require.Equal(t, "Curs de JavaScript", video.Titol)
	require.Len(t, video.Categories, 1)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/videos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "ytcatalog_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, env := doJSON(t, app, http.MethodGet, "/api/canals", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.False(t, env.Ok)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
