package cmd

import (
	"log/slog"

	"github.com/flowline/flowline/pkg/actions/callwebhook"
	"github.com/flowline/flowline/pkg/actions/createnotification"
	"github.com/flowline/flowline/pkg/actions/delay"
	"github.com/flowline/flowline/pkg/actions/logaction"
	"github.com/flowline/flowline/pkg/actions/sendemail"
	"github.com/flowline/flowline/pkg/actions/updaterecord"
	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/registry"
)

// NewRegistry builds the action registry with every native action type.
func NewRegistry(logger *slog.Logger, store persistence.Persistence, mailer sendemail.Mailer) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterAction(sendemail.NewActionFactory(mailer))
	reg.RegisterAction(callwebhook.NewActionFactory())
	reg.RegisterAction(updaterecord.NewActionFactory(store.RecordRepository()))
	reg.RegisterAction(createnotification.NewActionFactory(store.NotificationRepository()))
	reg.RegisterAction(delay.NewActionFactory())
	reg.RegisterAction(logaction.NewActionFactory())

	return reg
}
