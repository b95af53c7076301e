package chat_test

import (
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hallwaylabs/parley/pkg/chat"
)

var _ = Describe("Log", func() {
	var log *chat.Log

	BeforeEach(func() {
		log = chat.NewLog()
	})

	Describe("NewLog", func() {
		It("starts empty", func() {
			Expect(log.Len()).To(Equal(0))
			Expect(log.Turns()).To(BeEmpty())
		})
	})

	Describe("Append", func() {
		It("appends turns in order", func() {
			log.Append(chat.RoleUser, "Hello")
			log.Append(chat.RoleAssistant, "Hi there!")

			turns := log.Turns()
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Role).To(Equal(chat.RoleUser))
			Expect(turns[0].Content).To(Equal("Hello"))
			Expect(turns[1].Role).To(Equal(chat.RoleAssistant))
			Expect(turns[1].Content).To(Equal("Hi there!"))
		})

		It("returns the appended turn", func() {
			turn := log.Append(chat.RoleUser, "Hello")

			Expect(turn.Role).To(Equal(chat.RoleUser))
			Expect(turn.Content).To(Equal("Hello"))
		})

		It("does not enforce role alternation", func() {
			log.Append(chat.RoleUser, "one")
			log.Append(chat.RoleUser, "two")

			Expect(log.Len()).To(Equal(2))
		})

		It("keeps every turn under concurrent appends", func() {
			const writers = 16
			const turnsEach = 25

			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					for j := 0; j < turnsEach; j++ {
						log.Append(chat.RoleUser, fmt.Sprintf("writer %d turn %d", i, j))
					}
				}(i)
			}
			wg.Wait()

			Expect(log.Len()).To(Equal(writers * turnsEach))
		})
	})

	Describe("Turns", func() {
		It("returns a copy that does not alias the log", func() {
			log.Append(chat.RoleUser, "Hello")

			turns := log.Turns()
			turns[0].Content = "mutated"

			Expect(log.Turns()[0].Content).To(Equal("Hello"))
		})
	})

	Describe("Clear", func() {
		It("removes all prior turns", func() {
			log.Append(chat.RoleUser, "Hello")
			log.Append(chat.RoleAssistant, "Hi there!")

			log.Clear()

			Expect(log.Len()).To(Equal(0))
		})

		It("accepts new turns after clearing", func() {
			log.Append(chat.RoleUser, "old")
			log.Clear()

			log.Append(chat.RoleUser, "fresh start")
			Expect(log.Len()).To(Equal(1))

			log.Append(chat.RoleAssistant, "reply")
			Expect(log.Len()).To(Equal(2))
		})
	})
})
