package httpapi

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/parlay-feed/internal/feed-service/access"
	"github.com/radieske/parlay-feed/internal/feed-service/plays"
	"github.com/radieske/parlay-feed/internal/feed-service/view"
)

const (
	maxSlipBytes = 8 << 20
	// o formulário de autoria carrega o slip de volta como data URI (base64 ≈ 4/3)
	maxFormBytes = maxSlipBytes/3*4 + 2<<20
)

func (s *Server) feedPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, nil)
}

// renderPage monta a página para o tier da requisição; admin sempre recebe
// um formulário (novo, se form for nil)
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, form *view.Form) {
	tier := s.access.Resolve(r)
	list, err := s.plays.List(r.Context())
	if err != nil {
		s.log.Error("list plays", zap.Error(err))
		list = []plays.Play{}
	}

	page := view.Page{Feed: view.Build(list, tier)}
	if tier == access.Admin {
		if form == nil {
			f := view.NewForm()
			form = &f
		}
		page.Form = form
	}

	var buf bytes.Buffer
	if err := s.render.Page(&buf, page); err != nil {
		s.log.Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) adminLogin(w http.ResponseWriter, r *http.Request) {
	tok := r.PostFormValue("token")
	if !s.access.Matches(tok) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     access.AdminCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// adminSubmit trata os botões do formulário: add, remove:<i> e post
func (s *Server) adminSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	// o template envia multipart; urlencoded continua aceito para clientes simples
	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.log.Warn("parse admin form", zap.Error(err))
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := view.FormFromValues(r.PostForm)

	action := r.PostForm.Get("action")
	switch {
	case action == "add":
		form.AddLeg()
		s.renderPage(w, r, http.StatusOK, &form)
		return
	case strings.HasPrefix(action, "remove:"):
		if i, err := strconv.Atoi(strings.TrimPrefix(action, "remove:")); err == nil {
			form.RemoveLeg(i)
		}
		s.renderPage(w, r, http.StatusOK, &form)
		return
	}

	p, err := s.plays.Create(r.Context(), form.NewPlay())
	if err != nil {
		if form.SetValidation(err) {
			s.renderPage(w, r, http.StatusBadRequest, &form)
			return
		}
		s.log.Error("create play", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.posted(p)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// adminScan lê o slip enviado e devolve o formulário preenchido; qualquer
// falha do scan mantém o formulário editável com o aviso de preenchimento manual
func (s *Server) adminScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSlipBytes+1<<20)
	if err := r.ParseMultipartForm(maxSlipBytes); err != nil {
		http.Error(w, "bad upload", http.StatusBadRequest)
		return
	}
	form := view.FormFromValues(r.MultipartForm.Value)

	data, mediaType, err := readSlip(r)
	if err != nil {
		s.scanned("bad_input")
		form.ScanFailed()
		s.renderPage(w, r, http.StatusOK, &form)
		return
	}
	b64 := base64.StdEncoding.EncodeToString(data)
	form.SlipImage = "data:" + mediaType + ";base64," + b64

	ext, err := s.scanner.Scan(r.Context(), b64, mediaType)
	if err != nil {
		s.log.Warn("slip scan failed", zap.Error(err))
		s.scanned(scanOutcome(err))
		form.ScanFailed()
		s.renderPage(w, r, http.StatusOK, &form)
		return
	}
	s.scanned("ok")
	form.MergeScan(ext)
	s.renderPage(w, r, http.StatusOK, &form)
}

var errNoSlip = errors.New("no slip uploaded")

func readSlip(r *http.Request) ([]byte, string, error) {
	f, hdr, err := r.FormFile("slip")
	if err != nil {
		return nil, "", errNoSlip
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSlipBytes))
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errNoSlip
	}
	mediaType := hdr.Header.Get("Content-Type")
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = http.DetectContentType(data)
	}
	return data, mediaType, nil
}

// adminGrade alterna o resultado: clicar no resultado ativo volta para pending
func (s *Server) adminGrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res := plays.Result(r.PostFormValue("result"))

	p, changed, err := s.plays.ToggleResult(r.Context(), id, res)
	if err != nil {
		s.writeRepoError(w, "grade play", err)
		return
	}
	if changed {
		s.events.Graded(p)
		s.mutated()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) adminDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := s.plays.Delete(r.Context(), id)
	if err != nil {
		s.writeRepoError(w, "delete play", err)
		return
	}
	if removed {
		s.events.Deleted(id)
		s.mutated()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
