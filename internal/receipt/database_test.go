package receipt

import (
	"errors"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/Yogesh-Verma634/Budgy/internal/processing"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newTestRecord := func(id string) *Record {
		return &Record{
			ID:        id,
			StoreName: "Fresh Mart",
			Date:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Items: []processing.Item{
				{Name: "Organic Apple", Price: decimal.RequireFromString("3.99"), Category: processing.CategoryOther},
				{Name: "Milk 2 Gal", Price: decimal.RequireFromString("4.50"), Category: processing.CategoryOther},
			},
			TotalAmount: decimal.RequireFromString("8.49"),
			Category:    processing.CategoryOther,
			Filename:    "test.jpg",
			ContentType: "image/jpeg",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
	}

	Describe("SaveRecord", func() {
		var (
			record *Record
			err    error
		)

		BeforeEach(func() {
			record = newTestRecord("test-id")
		})

		JustBeforeEach(func() {
			err = db.SaveRecord(record)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should save the record to the database", func() {
				saved, getErr := db.GetRecord("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ID).To(Equal("test-id"))
			})
		})
	})

	Describe("GetRecord", func() {
		var (
			recordID string
			record   *Record
			err      error
		)

		JustBeforeEach(func() {
			record, err = db.GetRecord(recordID)
		})

		When("record exists", func() {
			BeforeEach(func() {
				recordID = "test-id"
				Expect(db.SaveRecord(newTestRecord("test-id"))).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the correct store name", func() {
				Expect(record.StoreName).To(Equal("Fresh Mart"))
			})

			It("should round-trip the items", func() {
				Expect(record.Items).To(HaveLen(2))
				Expect(record.Items[0].Name).To(Equal("Organic Apple"))
				Expect(record.Items[0].Price.Equal(decimal.RequireFromString("3.99"))).To(BeTrue())
			})

			It("should round-trip the total exactly", func() {
				Expect(record.TotalAmount.Equal(decimal.RequireFromString("8.49"))).To(BeTrue())
			})

			It("should round-trip the category", func() {
				Expect(record.Category).To(Equal(processing.CategoryOther))
			})
		})

		When("record does not exist", func() {
			var expectedErr error

			BeforeEach(func() {
				recordID = "nonexistent"
				expectedErr = errors.New("receipt not found: nonexistent")
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(expectedErr))
			})
		})
	})

	Describe("ListRecords", func() {
		var (
			records []*Record
			err     error
		)

		JustBeforeEach(func() {
			records, err = db.ListRecords()
		})

		When("records exist", func() {
			BeforeEach(func() {
				Expect(db.SaveRecord(newTestRecord("id1"))).NotTo(HaveOccurred())
				Expect(db.SaveRecord(newTestRecord("id2"))).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return all records", func() {
				Expect(records).To(HaveLen(2))
			})
		})

		When("no records exist", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return an empty list", func() {
				Expect(records).To(BeEmpty())
			})
		})
	})

	Describe("DeleteRecord", func() {
		var (
			recordID string
			err      error
		)

		JustBeforeEach(func() {
			err = db.DeleteRecord(recordID)
		})

		When("record exists", func() {
			BeforeEach(func() {
				recordID = "test-id"
				Expect(db.SaveRecord(newTestRecord("test-id"))).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should remove the record from the database", func() {
				_, getErr := db.GetRecord("test-id")
				Expect(getErr).To(HaveOccurred())
			})
		})

		When("record does not exist", func() {
			BeforeEach(func() {
				recordID = "nonexistent"
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})
		})
	})

	Describe("Close", func() {
		It("should not return an error", func() {
			err := db.Close()
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
