package session_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hallwaylabs/parley/pkg/chat"
	"github.com/hallwaylabs/parley/pkg/session"
)

var _ = Describe("MemoryStore", func() {
	var store *session.MemoryStore

	BeforeEach(func() {
		store = session.NewMemoryStore()
	})

	Describe("Log", func() {
		It("creates a log on first access", func() {
			log := store.Log("tab-1")

			Expect(log).NotTo(BeNil())
			Expect(log.Len()).To(Equal(0))
			Expect(store.Len()).To(Equal(1))
		})

		It("returns the same log for the same session", func() {
			store.Log("tab-1").Append(chat.RoleUser, "Hello")

			Expect(store.Log("tab-1").Len()).To(Equal(1))
			Expect(store.Len()).To(Equal(1))
		})

		It("isolates sessions from each other", func() {
			store.Log("tab-1").Append(chat.RoleUser, "Hello")

			Expect(store.Log("tab-2").Len()).To(Equal(0))
			Expect(store.Len()).To(Equal(2))
		})
	})

	Describe("Clear", func() {
		It("resets the session's log", func() {
			log := store.Log("tab-1")
			log.Append(chat.RoleUser, "Hello")
			log.Append(chat.RoleAssistant, "Hi there!")

			store.Clear("tab-1")

			Expect(log.Len()).To(Equal(0))
			Expect(store.Len()).To(Equal(1), "clearing keeps the session alive")
		})

		It("ignores unknown sessions", func() {
			store.Clear("nope")

			Expect(store.Len()).To(Equal(0))
		})
	})

	Describe("Remove", func() {
		It("drops the session entirely", func() {
			store.Log("tab-1")
			store.Remove("tab-1")

			Expect(store.Len()).To(Equal(0))
		})

		It("hands out a fresh log after removal", func() {
			store.Log("tab-1").Append(chat.RoleUser, "Hello")
			store.Remove("tab-1")

			Expect(store.Log("tab-1").Len()).To(Equal(0))
		})
	})
})
