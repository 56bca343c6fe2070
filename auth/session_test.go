package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skyezerfox/magma/auth"
)

const notchProfile = `{
	"id": "069a79f444e94726a5befca90e38aaf5",
	"name": "Notch",
	"properties": [{"name": "textures", "value": "e30=", "signature": "c2ln"}]
}`

var _ = Describe("HTTPSessionService", func() {
	var (
		handler http.HandlerFunc
		server  *httptest.Server
		service *auth.HTTPSessionService
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		service = auth.NewHTTPSessionService(server.URL, 200*time.Millisecond)
	})

	AfterEach(func() {
		server.Close()
	})

	kindOf := func(err error) auth.Kind {
		kind, ok := auth.KindOf(err)
		Expect(ok).To(BeTrue(), "%v", err)
		return kind
	}

	Describe("HasJoined()", func() {
		It("returns the verified profile", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/session/minecraft/hasJoined"))
				Expect(r.URL.Query().Get("username")).To(Equal("Notch"))
				Expect(r.URL.Query().Get("serverId")).To(Equal("-abc"))
				Expect(r.URL.Query().Get("ip")).To(Equal("127.0.0.1"))
				w.Write([]byte(notchProfile))
			}

			profile, err := service.HasJoined(context.Background(), "Notch", "-abc", "127.0.0.1")
			Expect(err).To(Succeed())
			Expect(profile.ID).To(Equal(uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")))
			Expect(profile.Name).To(Equal("Notch"))
			Expect(profile.Properties).To(HaveLen(1))
			Expect(profile.Properties[0].Signed()).To(BeTrue())
		})

		It("treats no content as an invalid session", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}
			_, err := service.HasJoined(context.Background(), "Notch", "-abc", "")
			Expect(kindOf(err)).To(Equal(auth.InvalidCredentials))
		})

		It("treats server errors as unavailable", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}
			_, err := service.HasJoined(context.Background(), "Notch", "-abc", "")
			Expect(kindOf(err)).To(Equal(auth.Unavailable))
		})

		It("treats a slow server as unavailable", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			}
			_, err := service.HasJoined(context.Background(), "Notch", "-abc", "")
			Expect(kindOf(err)).To(Equal(auth.Unavailable))
		})

		It("recognises migrated accounts", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{
					"error":        "ForbiddenOperationException",
					"errorMessage": "UserMigratedException",
				})
			}
			_, err := service.HasJoined(context.Background(), "Notch", "-abc", "")
			Expect(kindOf(err)).To(Equal(auth.InvalidCredentials))

			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"UserMigratedException","errorMessage":"Invalid credentials. Account migrated, use e-mail as username."}`))
			}
			_, err = service.HasJoined(context.Background(), "Notch", "-abc", "")
			Expect(kindOf(err)).To(Equal(auth.UserMigrated))
		})

		It("rejects malformed profiles", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id":"nope","name":"Notch"}`))
			}
			_, err := service.HasJoined(context.Background(), "Notch", "-abc", "")
			Expect(kindOf(err)).To(Equal(auth.InvalidCredentials))
		})
	})

	Describe("JoinServer()", func() {
		It("posts the join request", func() {
			var body map[string]string
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/session/minecraft/join"))
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				w.WriteHeader(http.StatusNoContent)
			}

			err := service.JoinServer(context.Background(), auth.JoinRequest{
				AccessToken:     "token",
				SelectedProfile: uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5"),
				ServerHash:      "-abc",
			})
			Expect(err).To(Succeed())
			Expect(body).To(Equal(map[string]string{
				"accessToken":     "token",
				"selectedProfile": "069a79f444e94726a5befca90e38aaf5",
				"serverId":        "-abc",
			}))
		})

		It("reports rejected tokens", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"ForbiddenOperationException","errorMessage":"Invalid token."}`))
			}
			err := service.JoinServer(context.Background(), auth.JoinRequest{AccessToken: "bad"})
			Expect(kindOf(err)).To(Equal(auth.InvalidCredentials))
		})
	})
})
