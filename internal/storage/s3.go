package storage

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// S3Config descreve o bucket compatível com S3 usado para avatares.
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	PublicDomain string
	HTTPClient   *http.Client
}

// S3AvatarStore grava avatares em um endpoint S3/R2 assinando com SigV4.
type S3AvatarStore struct {
	cfg    S3Config
	client *http.Client
}

// NewS3AvatarStore valida a configuração e devolve o store pronto.
func NewS3AvatarStore(cfg S3Config) (*S3AvatarStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &S3AvatarStore{cfg: cfg, client: client}, nil
}

// SaveAvatar envia a imagem para o bucket sob avatars/<usuario>.<ext> e
// devolve a URL pública. O objeto é sobrescrito a cada troca de foto.
func (s *S3AvatarStore) SaveAvatar(ctx context.Context, usuarioID string, body []byte, contentType string) (string, error) {
	if strings.TrimSpace(usuarioID) == "" {
		return "", errors.New("storage: usuário obrigatório")
	}
	if len(body) == 0 {
		return "", errors.New("storage: imagem vazia")
	}

	ext, ok := extensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", errors.New("storage: formato de imagem não suportado")
	}

	key := fmt.Sprintf("avatars/%s.%s", usuarioID, ext)
	endpoint := strings.TrimRight(s.cfg.Endpoint, "/")
	escapedKey := (&url.URL{Path: key}).EscapedPath()
	targetURL := fmt.Sprintf("%s/%s/%s", endpoint, s.cfg.Bucket, escapedKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, targetURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	payloadHash := sha256.Sum256(body)
	payloadHex := hex.EncodeToString(payloadHash[:])

	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Length", fmt.Sprintf("%d", len(body)))
	req.Header.Set("Cache-Control", "public, max-age=3600")
	req.Header.Set("x-amz-content-sha256", payloadHex)

	s.sign(req, payloadHex, time.Now().UTC())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("storage: upload falhou (%d): %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if strings.TrimSpace(s.cfg.PublicDomain) != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.PublicDomain, "/"), escapedKey), nil
	}
	return targetURL, nil
}

func (cfg S3Config) validate() error {
	switch {
	case strings.TrimSpace(cfg.Endpoint) == "":
		return errors.New("storage: endpoint do S3 ausente")
	case !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://"):
		return errors.New("storage: endpoint deve incluir protocolo http/https")
	case strings.TrimSpace(cfg.Region) == "":
		return errors.New("storage: região do S3 ausente")
	case strings.TrimSpace(cfg.Bucket) == "":
		return errors.New("storage: bucket do S3 ausente")
	case strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "":
		return errors.New("storage: credenciais do S3 ausentes")
	}
	return nil
}

// sign aplica assinatura AWS SigV4 à requisição PUT.
func (s *S3AvatarStore) sign(req *http.Request, payloadHash string, now time.Time) {
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")

	req.Header.Set("x-amz-date", amzDate)
	req.Header.Set("Host", req.URL.Host)

	headerLines, signedHeaders := canonicalHeaders(req.Header)
	canonicalRequest := strings.Join([]string{
		req.Method,
		encodePath(req.URL.Path),
		"", // PUT de avatar não carrega query string
		headerLines,
		signedHeaders,
		payloadHash,
	}, "\n")

	sum := sha256.Sum256([]byte(canonicalRequest))
	scope := fmt.Sprintf("%s/%s/s3/aws4_request", dateStamp, s.cfg.Region)
	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		scope,
		hex.EncodeToString(sum[:]),
	}, "\n")

	key := hmacSHA256([]byte("AWS4"+s.cfg.SecretKey), []byte(dateStamp))
	key = hmacSHA256(key, []byte(s.cfg.Region))
	key = hmacSHA256(key, []byte("s3"))
	key = hmacSHA256(key, []byte("aws4_request"))
	signature := hex.EncodeToString(hmacSHA256(key, []byte(stringToSign)))

	req.Header.Set("Authorization", fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		s.cfg.AccessKey, scope, signedHeaders, signature,
	))
}

func canonicalHeaders(h http.Header) (string, string) {
	merged := make(map[string]string, len(h))
	for name, vals := range h {
		lower := strings.ToLower(name)
		if lower == "authorization" {
			continue
		}
		trimmed := make([]string, 0, len(vals))
		for _, v := range vals {
			trimmed = append(trimmed, strings.TrimSpace(v))
		}
		merged[lower] = strings.Join(trimmed, ",")
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = name + ":" + merged[name]
	}

	return strings.Join(lines, "\n") + "\n", strings.Join(names, ";")
}

func encodePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var b strings.Builder
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~', c == '/':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
