package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"haskify-be/internal/constant"
	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/pkg/mailer"
	"haskify-be/internal/pkg/serverutils"
	"haskify-be/internal/repository/inmemory"
	"haskify-be/internal/repository/memory"
	"haskify-be/internal/service"
	"haskify-be/internal/websocket"
	"haskify-be/pkg/extract"
	"haskify-be/pkg/llm"
	"haskify-be/pkg/rag/quizdedup"
	"haskify-be/pkg/rag/retriever"
	"haskify-be/pkg/runner"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return s.reply, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, nil, options...)
}

func (s *stubLLM) Stream(context.Context, []llm.Message, ...llm.Option) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if s.err != nil {
			yield("", s.err)
			return
		}
		yield(s.reply, nil)
	}
}

type stubSender struct {
	err  error
	sent int
}

func (s *stubSender) DialAndSend(m ...*gomail.Message) error {
	s.sent += len(m)
	return s.err
}

type stubEmbedder struct{}

func (stubEmbedder) Generate(context.Context, string, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

const testAdminKey = "curator-key"

type testApp struct {
	app    *fiber.App
	llm    *stubLLM
	sender *stubSender
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := logger.NewNopLogger()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub(nil, log)
	go hub.Run(ctx)

	uowFactory := inmemory.NewRepositoryFactory(inmemory.NewStore())
	issuer := serverutils.NewSessionTokenIssuer("controller-secret")
	hashes := memory.NewQuizHashRepository(time.Hour, time.Hour)
	cache := memory.NewChunkCacheRepository(time.Hour, time.Hour)
	provider := &stubLLM{reply: "Think about range()."}
	sender := &stubSender{}
	r := retriever.New(retriever.Lexical{})

	sessions := service.NewSessionService(uowFactory, issuer, hashes, cache, nil, log, time.Hour)
	materials, err := service.NewMaterialService(uowFactory, extract.NewService(extract.NewPDFExtractor(t.TempDir())), stubEmbedder{}, cache, nil, log, service.MaterialConfig{
		MaxUploadBytes: 1 << 20,
		MaterialTTL:    time.Hour,
		ChunkSize:      50,
		ChunkOverlap:   10,
		CodeChunkSize:  20,
		CodeOverlap:    2,
		CodeMinLines:   5,
	})
	require.NoError(t, err)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })
	turns := service.NewPublisherService(constant.TopicTutorTurns, pubSub)
	tutor := service.NewTutorService(uowFactory, materials, r, provider, turns, log, service.TutorConfig{TopK: 6, Temperature: 0.3, HistoryItems: 2})
	dedup := quizdedup.New(hashes, quizdedup.DefaultConfig([]string{"loops", "lists"}))
	quiz := service.NewQuizService(uowFactory, materials, r, provider, dedup, nil, log, service.QuizConfig{TopK: 6, HistoryTurns: 8, HistoryItems: 2})
	transcripts := service.NewTranscriptService(uowFactory)
	runs := service.NewRunnerService(runner.New(runner.Config{TempDir: t.TempDir()}), log)
	contact := service.NewContactService(mailer.NewContactMailerWithSender(sender, "noreply@haskify.dev", "Haskify", "team@haskify.dev"), log)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewSessionController(sessions, issuer, hub).RegisterRoutes(api)
	NewMaterialController(materials, sessions, issuer, log).RegisterRoutes(api)
	NewAdminController(materials, testAdminKey, log).RegisterRoutes(api)
	NewQuizController(quiz, sessions, issuer, log).RegisterRoutes(api)
	NewTranscriptController(transcripts, log).RegisterRoutes(api)
	NewContactController(contact).RegisterRoutes(api)
	NewTutorController(tutor, sessions, issuer, hub, log).RegisterRoutes(app)
	NewRunnerController(runs, 2, time.Minute).RegisterRoutes(app)
	HealthController{}.RegisterRoutes(app)

	return &testApp{app: app, llm: provider, sender: sender}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.send(t, req)
}

func (a *testApp) send(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func (a *testApp) upload(t *testing.T, path, token, header, filename, content string) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if header != "" {
		req.Header.Set("X-Admin-Key", header)
	}
	return a.send(t, req)
}

func (a *testApp) session(t *testing.T) (string, string) {
	t.Helper()
	resp, body := a.do(t, http.MethodPost, "/api/sessions", "", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	return data["session_id"].(string), data["token"].(string)
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OK", string(body))
}

func TestSessionLifecycle(t *testing.T) {
	a := newTestApp(t)
	id, token := a.session(t)

	resp, _ := a.do(t, http.MethodDelete, "/api/sessions/"+uuid.NewString(), token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = a.do(t, http.MethodDelete, "/api/sessions/"+id, token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := a.do(t, http.MethodGet, "/api/materials", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Session expired", body["message"])

	resp, _ = a.do(t, http.MethodGet, "/api/materials", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMaterialRoutes(t *testing.T) {
	a := newTestApp(t)
	_, token := a.session(t)

	resp, body := a.upload(t, "/api/upload-material", token, "", "", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, constant.UploadMissingFileMessage, body["error"])

	resp, body = a.upload(t, "/api/upload-material", token, "", "notes.exe", "binary")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, constant.UploadUnsupportedMessage, body["error"])

	resp, body = a.upload(t, "/api/upload-material", token, "", "loops.txt", "python for loops iterate over lists")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "loops.txt", body["title"])
	assert.Equal(t, float64(1), body["chunks"])
	materialId := body["materialId"].(string)

	resp, body = a.do(t, http.MethodGet, "/api/materials/"+materialId, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "loops.txt", body["title"])

	resp, body = a.do(t, http.MethodGet, "/api/materials/"+uuid.NewString(), token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, constant.MaterialNotFoundMessage, body["error"])

	_, otherToken := a.session(t)
	resp, _ = a.do(t, http.MethodGet, "/api/materials/"+materialId, otherToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = a.do(t, http.MethodGet, "/api/materials", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)
}

func TestAdminRoutes(t *testing.T) {
	a := newTestApp(t)

	resp, _ := a.upload(t, "/api/admin/materials", "", "wrong", "guide.md", "python functions take arguments")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := a.upload(t, "/api/admin/materials", "", testAdminKey, "guide.md", "python functions take arguments")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	materialId := body["data"].(map[string]any)["materialId"].(string)

	_, token := a.session(t)
	resp, _ = a.do(t, http.MethodGet, "/api/materials/"+materialId, token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/materials/"+materialId+"/deactivate", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	resp, _ = a.send(t, req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, "/api/materials/"+materialId, token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPatch, "/api/admin/materials/"+uuid.NewString()+"/deactivate", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	resp, _ = a.send(t, req)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAsk(t *testing.T) {
	a := newTestApp(t)
	_, token := a.session(t)

	resp, _ := a.do(t, http.MethodPost, "/ai/ask", "", dto.AskRequest{Query: "hi"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := a.do(t, http.MethodPost, "/ai/ask", token, dto.AskRequest{Query: "hi"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, constant.TutorGreetingReply, body["response"])

	resp, body = a.do(t, http.MethodPost, "/ai/ask", token, dto.AskRequest{Query: "why does my python loop never stop?"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Think about range().", body["response"])

	resp, _ = a.do(t, http.MethodPost, "/ai/ask", token, dto.AskRequest{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	a.llm.err = errors.New("provider down")
	resp, body = a.do(t, http.MethodPost, "/ai/ask", token, dto.AskRequest{Query: "why does my python loop never stop?"})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, constant.TutorFailureReply, body["response"])
}

func TestStreamRouteRequiresUpgrade(t *testing.T) {
	a := newTestApp(t)
	_, token := a.session(t)

	resp, _ := a.do(t, http.MethodGet, "/ws/ai/ask?token="+token, "", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, "/ws/ai/ask", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestQuizRoutes(t *testing.T) {
	a := newTestApp(t)
	_, token := a.session(t)

	a.llm.reply = `{"id":"q","question":"What does len([1,2]) return?","choices":["1","2","3","4"],"correctIndex":1,"topic":"lists"}`
	resp, body := a.do(t, http.MethodPost, "/api/quiz", token, dto.GenerateQuizRequest{
		ChatHistory: []dto.ChatHistoryItem{{Question: "how long is a list?", Response: "use len"}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "What does len([1,2]) return?", body["question"])
	quizId := body["id"].(string)

	resp, body = a.do(t, http.MethodPost, "/api/quiz/"+quizId+"/answer", token, map[string]int{"choiceIndex": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["data"].(map[string]any)["correct"])

	resp, _ = a.do(t, http.MethodPost, "/api/quiz/"+quizId+"/answer", token, map[string]int{"choiceIndex": 7})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/quiz/"+uuid.NewString()+"/answer", token, map[string]int{"choiceIndex": 0})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	a.llm.err = errors.New("provider down")
	resp, body = a.do(t, http.MethodPost, "/api/quiz", token, dto.GenerateQuizRequest{})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, constant.QuizFailureMessage, body["error"])
}

func TestTranscriptRoutes(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.do(t, http.MethodPost, "/api/save-session", "", map[string]any{"session": []any{}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, constant.TranscriptRequiredMessage, body["error"])

	entries := map[string]any{"session": []map[string]string{{"question": "q", "response": "r"}}}
	resp, body = a.do(t, http.MethodPost, "/api/save-session", "", entries)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	id := body["id"].(string)

	resp, body = a.do(t, http.MethodPatch, "/api/save-session/"+id, "", entries)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, body = a.do(t, http.MethodPatch, "/api/save-session/"+uuid.NewString(), "", entries)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, constant.TranscriptNotFoundMessage, body["error"])
}

func TestRunPython(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.do(t, http.MethodPost, "/run-python", "", dto.RunCodeRequest{Code: "   "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, constant.RunnerInvalidCodeMessage, body["output"])

	resp, body = a.do(t, http.MethodPost, "/run-python", "", dto.RunCodeRequest{Code: "import subprocess"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, constant.RunnerBlockedCodeMessage, body["output"])

	resp, body = a.do(t, http.MethodPost, "/run-python", "", dto.RunCodeRequest{Code: strings.Repeat("x", 20000)})
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, constant.RunnerRateLimitedMessage, body["output"])
}

func TestContact(t *testing.T) {
	a := newTestApp(t)
	msg := dto.ContactRequest{Name: "Ada", Email: "ada@example.com", Message: "Love the quizzes"}

	resp, body := a.do(t, http.MethodPost, "/api/contact", "", msg)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 1, a.sender.sent)

	resp, _ = a.do(t, http.MethodPost, "/api/contact", "", dto.ContactRequest{Name: "Ada", Email: "not-an-email", Message: "x"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	a.sender.err = errors.New("smtp down")
	resp, body = a.do(t, http.MethodPost, "/api/contact", "", msg)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, constant.ContactFailureMessage, body["error"])
}
