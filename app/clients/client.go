package clients

import (
	"log"
	"sync"

	"ConverseAI/app/teams"
)

// Interface is a conversation surface: somewhere user queries come from
// and analyses go back to.
type Interface interface {
	Subscribe(team *teams.Team)
}

type Registry struct {
	mu      sync.RWMutex
	clients []Interface
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make([]Interface, 0),
	}
}

func (r *Registry) Register(client Interface, team *teams.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients = append(r.clients, client)
	client.Subscribe(team)

	return nil
}

func (r *Registry) GetAll() []Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Interface, len(r.clients))
	copy(result, r.clients)
	return result
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, client := range r.clients {
		if closer, ok := client.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				log.Printf("⚠️ Error closing client: %v\n", err)
			}
		}
	}
	r.clients = make([]Interface, 0)
}
