package rmqconsumer

import (
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type declared struct {
	name string
	args amqp091.Table
}

type fakeDeclarer struct {
	exchanges []string
	queues    []declared
	bindings  []string
	failQueue string
}

func (f *fakeDeclarer) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp091.Table) error {
	f.exchanges = append(f.exchanges, name+":"+kind)
	return nil
}

func (f *fakeDeclarer) QueueDeclare(name string, _, _, _, _ bool, args amqp091.Table) (amqp091.Queue, error) {
	if name == f.failQueue {
		return amqp091.Queue{}, errors.New("boom")
	}
	f.queues = append(f.queues, declared{name: name, args: args})
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeDeclarer) QueueBind(name, key, exchange string, _ bool, _ amqp091.Table) error {
	f.bindings = append(f.bindings, exchange+"->"+name+"@"+key)
	return nil
}

func TestTopology_Declare(t *testing.T) {
	topo := Topology{Exchange: "files", ExchangeType: "direct", Queue: "thumbnails", RetryDelay: 30 * time.Second}
	ch := &fakeDeclarer{}

	require.NoError(t, topo.Declare(ch))

	assert.Equal(t, []string{"files:direct"}, ch.exchanges)
	assert.Equal(t, []string{"files->thumbnails@thumbnail.generate"}, ch.bindings)
	require.Len(t, ch.queues, 3)
	assert.Equal(t, "thumbnails", ch.queues[0].name)
	assert.Equal(t, "thumbnails.retry", ch.queues[1].name)
	assert.Equal(t, int64(30000), ch.queues[1].args["x-message-ttl"])
	assert.Equal(t, "files", ch.queues[1].args["x-dead-letter-exchange"])
	assert.Equal(t, RoutingKeyThumbnail, ch.queues[1].args["x-dead-letter-routing-key"])
	assert.Equal(t, "thumbnails.dead", ch.queues[2].name)
}

func TestTopology_Declare_Error(t *testing.T) {
	topo := Topology{Exchange: "files", ExchangeType: "direct", Queue: "thumbnails"}
	ch := &fakeDeclarer{failQueue: "thumbnails.retry"}

	err := topo.Declare(ch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thumbnails.retry")
}
