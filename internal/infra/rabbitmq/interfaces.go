package rabbitmq

import "eatzone/internal/infra"

var _ infra.PublisherInterface = (*Publisher)(nil)
