package access

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Tier é o nível de acesso do visitante
type Tier int

const (
	Free Tier = iota
	Premium
	Admin
)

func (t Tier) String() string {
	switch t {
	case Admin:
		return "admin"
	case Premium:
		return "premium"
	default:
		return "free"
	}
}

// Elevated: premium e admin veem o detalhe das legs
func (t Tier) Elevated() bool { return t >= Premium }

const (
	// MemberTierHeader é preenchido pelo gateway da plataforma de membros (confiável)
	MemberTierHeader = "X-Member-Tier"
	AdminCookie      = "admin_token"
)

// Resolver decide o tier a partir da requisição
type Resolver struct {
	AdminToken string
}

// Resolve: admin quando o bearer (ou cookie admin_token) bate com ADMIN_TOKEN;
// premium quando o header de membro é premium/high_roller; senão free.
// Sem ADMIN_TOKEN configurado ninguém é admin.
func (r Resolver) Resolve(req *http.Request) Tier {
	if r.AdminToken != "" {
		var tok string
		// outros esquemas (Basic de um proxy, por ex.) não escondem o cookie
		if h := req.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			tok = strings.TrimPrefix(h, "Bearer ")
		}
		if tok == "" {
			if c, err := req.Cookie(AdminCookie); err == nil {
				tok = c.Value
			}
		}
		if r.Matches(tok) {
			return Admin
		}
	}

	switch strings.ToLower(strings.TrimSpace(req.Header.Get(MemberTierHeader))) {
	case "premium", "high_roller", "high-roller":
		return Premium
	}
	return Free
}

// Matches compara tok com ADMIN_TOKEN em tempo constante
func (r Resolver) Matches(tok string) bool {
	return r.AdminToken != "" && tok != "" &&
		subtle.ConstantTimeCompare([]byte(tok), []byte(r.AdminToken)) == 1
}
