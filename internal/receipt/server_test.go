package receipt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/shopspring/decimal"

	"github.com/Yogesh-Verma634/Budgy/internal/processing"
)

// stubOCREngine feeds fixed text into a real pipeline
type stubOCREngine struct {
	text string
	err  error
}

func (s *stubOCREngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func (s *stubOCREngine) Close() error {
	return nil
}

// testPNG encodes a small valid image upload
func testPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// multipartUpload builds a multipart body with a "receipt" file field
func multipartUpload(filename string, data []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("receipt", filename)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(data)
	Expect(err).NotTo(HaveOccurred())
	Expect(writer.Close()).NotTo(HaveOccurred())
	return body, writer.FormDataContentType()
}

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		parser      *mockParser
		auth        BasicAuth
		server      *Server
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		service := NewService(db, parser, newMockStorage())
		server = NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	BeforeEach(func() {
		db = newMockDB()
		parser = newMockParser()
		auth = BasicAuth{}
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	Describe("handleIndex", func() {
		It("should serve the dashboard page", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("Budgy"))
		})
	})

	Describe("handleListReceipts", func() {
		When("records exist", func() {
			BeforeEach(func() {
				db.records["id1"] = &Record{ID: "id1", StoreName: "Fresh Mart"}
				db.records["id2"] = &Record{ID: "id2", StoreName: "Shoe World"}
			})

			It("should return all records as JSON", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

				var records []*Record
				Expect(json.NewDecoder(resp.Body).Decode(&records)).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(2))
			})

			It("should serve the same listing at /api/expenses", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/expenses")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var records []*Record
				Expect(json.NewDecoder(resp.Body).Decode(&records)).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(2))
			})
		})
	})

	Describe("handleUploadReceipt", func() {
		var (
			body        *bytes.Buffer
			contentType string
			resp        *http.Response
		)

		JustBeforeEach(func() {
			var err error
			resp, err = http.Post(ghttpServer.URL()+"/api/receipts", contentType, body)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			resp.Body.Close()
		})

		When("the upload parses successfully", func() {
			BeforeEach(func() {
				body, contentType = multipartUpload("receipt.png", testPNG())
			})

			It("should return 201 with the record", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var record Record
				Expect(json.NewDecoder(resp.Body).Decode(&record)).NotTo(HaveOccurred())
				Expect(record.StoreName).To(Equal("Shoe World"))
				Expect(record.TotalAmount.Equal(decimal.RequireFromString("59.99"))).To(BeTrue())
			})
		})

		When("the image cannot be decoded", func() {
			BeforeEach(func() {
				parser.err = &processing.Error{Kind: processing.KindImageDecode, Message: "invalid image"}
				body, contentType = multipartUpload("receipt.png", []byte("not an image"))
			})

			It("should return 422 with the pipeline message", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))

				var errBody map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&errBody)).NotTo(HaveOccurred())
				Expect(errBody["error"]).To(Equal("invalid image"))
			})
		})

		When("the OCR engine faults", func() {
			BeforeEach(func() {
				parser.err = &processing.Error{Kind: processing.KindOCREngine, Message: "recognition failed, try a clearer image"}
				body, contentType = multipartUpload("receipt.png", testPNG())
			})

			It("should return 502", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
			})
		})

		When("no file is attached", func() {
			BeforeEach(func() {
				body = &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				Expect(writer.Close()).NotTo(HaveOccurred())
				contentType = writer.FormDataContentType()
			})

			It("should return 400", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("handleGetReceipt", func() {
		When("the record exists", func() {
			BeforeEach(func() {
				db.records["id1"] = &Record{ID: "id1", StoreName: "Fresh Mart"}
			})

			It("should return the record", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/id1")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var record Record
				Expect(json.NewDecoder(resp.Body).Decode(&record)).NotTo(HaveOccurred())
				Expect(record.StoreName).To(Equal("Fresh Mart"))
			})
		})

		When("the record does not exist", func() {
			It("should return 404", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/missing")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			})
		})
	})

	Describe("handleDeleteReceipt", func() {
		BeforeEach(func() {
			db.records["id1"] = &Record{ID: "id1", Filename: "f.jpg"}
		})

		It("should return 204", func() {
			req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/receipts/id1", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		})
	})

	Describe("handleExpenseSummary", func() {
		BeforeEach(func() {
			db.records["id1"] = &Record{
				ID:          "id1",
				Category:    processing.CategoryClothing,
				TotalAmount: decimal.RequireFromString("59.99"),
			}
		})

		It("should return totals per category", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/expenses/summary")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var summary []CategoryTotal
			Expect(json.NewDecoder(resp.Body).Decode(&summary)).NotTo(HaveOccurred())
			Expect(summary).To(HaveLen(1))
			Expect(summary[0].Category).To(Equal(processing.CategoryClothing))
			Expect(summary[0].Total.Equal(decimal.RequireFromString("59.99"))).To(BeTrue())
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "pass"}
			setupServer()
		})

		It("rejects requests without credentials", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("accepts requests with correct credentials", func() {
			req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/receipts", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("user:pass")))
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})
})

var _ = Describe("End to end upload", func() {
	var (
		engine      *stubOCREngine
		ghttpServer *ghttp.Server
		db          *BoltDB
	)

	BeforeEach(func() {
		tmpDir := GinkgoT().TempDir()

		var err error
		db, err = NewBoltDB(filepath.Join(tmpDir, "budgy.db"))
		Expect(err).NotTo(HaveOccurred())

		store, err := NewLocalStorage(filepath.Join(tmpDir, "receipts"))
		Expect(err).NotTo(HaveOccurred())

		engine = &stubOCREngine{
			text: "Fresh Mart\nOrganic Apple  3.99\nrandom note\nMilk 2 Gal  4.50",
		}
		service := NewService(db, processing.NewProcessor(engine), store)
		server := NewServerWithMux(service, BasicAuth{}, http.NewServeMux())

		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP)
	})

	AfterEach(func() {
		ghttpServer.Close()
		db.Close()
	})

	It("parses, persists and serves the receipt", func() {
		body, contentType := multipartUpload("receipt.png", testPNG())
		resp, err := http.Post(ghttpServer.URL()+"/api/receipts", contentType, body)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var record Record
		Expect(json.NewDecoder(resp.Body).Decode(&record)).NotTo(HaveOccurred())
		Expect(record.StoreName).To(Equal("Fresh Mart"))
		Expect(record.Items).To(HaveLen(2))
		Expect(record.Category).To(Equal(processing.CategoryOther))

		// The total must equal the sum of the item prices
		sum := decimal.Zero
		for _, item := range record.Items {
			sum = sum.Add(item.Price)
		}
		Expect(record.TotalAmount.Equal(sum)).To(BeTrue())
		Expect(record.TotalAmount.Equal(decimal.RequireFromString("8.49"))).To(BeTrue())

		// And the record must be retrievable afterwards
		listResp, err := http.Get(ghttpServer.URL() + "/api/receipts")
		Expect(err).NotTo(HaveOccurred())
		defer listResp.Body.Close()

		var records []*Record
		Expect(json.NewDecoder(listResp.Body).Decode(&records)).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].ID).To(Equal(record.ID))
	})
})
