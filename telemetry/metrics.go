package telemetry

import (
	"errors"

	"go.opentelemetry.io/otel/metric"
)

type Instruments struct {
	ConnectionsAccepted metric.Int64Counter
	AcceptErrors        metric.Int64Counter
	ReadErrors          metric.Int64Counter
	WriteErrors         metric.Int64Counter
	ResponsesSent       metric.Int64Counter
	ActiveHandlers      metric.Int64UpDownCounter
	RequestSize         metric.Int64Histogram
}

func NewInstruments(meter metric.Meter) (*Instruments, error) {
	var (
		inst Instruments
		err  error
		errs []error
	)

	inst.ConnectionsAccepted, err = meter.Int64Counter("hello.connections.accepted",
		metric.WithDescription("Connections accepted by the listener"),
		metric.WithUnit("{connection}"))
	errs = append(errs, err)

	inst.AcceptErrors, err = meter.Int64Counter("hello.accept.errors",
		metric.WithDescription("Failed accept calls"),
		metric.WithUnit("{error}"))
	errs = append(errs, err)

	inst.ReadErrors, err = meter.Int64Counter("hello.read.errors",
		metric.WithDescription("Connections dropped because the request read failed"),
		metric.WithUnit("{error}"))
	errs = append(errs, err)

	inst.WriteErrors, err = meter.Int64Counter("hello.write.errors",
		metric.WithDescription("Connections whose response write or flush failed"),
		metric.WithUnit("{error}"))
	errs = append(errs, err)

	inst.ResponsesSent, err = meter.Int64Counter("hello.responses.sent",
		metric.WithDescription("Fixed responses fully flushed to a peer"),
		metric.WithUnit("{response}"))
	errs = append(errs, err)

	inst.ActiveHandlers, err = meter.Int64UpDownCounter("hello.handlers.active",
		metric.WithDescription("Connection handlers currently running"),
		metric.WithUnit("{handler}"))
	errs = append(errs, err)

	inst.RequestSize, err = meter.Int64Histogram("hello.request.size",
		metric.WithDescription("Bytes consumed by the single request read"),
		metric.WithUnit("By"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &inst, nil
}
