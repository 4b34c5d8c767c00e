package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitstack/reepay-payments/internal/adapters/reepay"
	"github.com/fitstack/reepay-payments/internal/core/domain"
)

func (a *app) chargeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charge",
		Short: "Inspect charges",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get [handle]",
		Short: "Show a charge by invoice handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			charge, err := a.api.GetCharge(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), charge)
		},
	})
	return cmd
}

func (a *app) customerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Inspect customers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get [handle]",
		Short: "Show a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			customer, err := a.api.GetCustomer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), customer)
		},
	})
	var customer domain.Customer
	create := &cobra.Command{
		Use:   "create [handle]",
		Short: "Create a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			customer.Handle = args[0]
			created, err := a.api.CreateCustomer(cmd.Context(), customer)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}
	create.Flags().StringVar(&customer.Email, "email", "", "Email address")
	create.Flags().StringVar(&customer.FirstName, "first-name", "", "First name")
	create.Flags().StringVar(&customer.LastName, "last-name", "", "Last name")
	create.Flags().StringVar(&customer.Company, "company", "", "Company name")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "cards [handle]",
		Short: "List the saved cards of a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := a.api.GetCustomerPaymentMethods(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cards)
		},
	})
	return cmd
}

func (a *app) planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage subscription plans",
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := a.api.ListPlans(cmd.Context(), !all)
			if err != nil {
				return err
			}
			for _, p := range plans {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-10s %8d %s\n", p.Handle, p.State, p.Amount, p.Name)
			}
			return nil
		},
	}
	list.Flags().BoolVarP(&all, "all", "a", false, "Include inactive plans")
	cmd.AddCommand(list)

	cmd.AddCommand(showCmd(a, "get [handle]", "Show a plan", (*reepay.API).GetPlan))

	var plan reepay.Plan
	create := &cobra.Command{
		Use:   "create [handle]",
		Short: "Create a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan.Handle = args[0]
			created, err := a.api.CreatePlan(cmd.Context(), plan)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}
	create.Flags().StringVar(&plan.Name, "name", "", "Plan name")
	create.Flags().StringVar(&plan.Description, "description", "", "Plan description")
	create.Flags().Int64Var(&plan.Amount, "amount", 0, "Amount in minor units")
	create.Flags().StringVar(&plan.Currency, "currency", "", "Currency code (account default if empty)")
	create.Flags().IntVar(&plan.IntervalLength, "interval", 1, "Billing interval length")
	create.Flags().StringVar(&plan.ScheduleType, "schedule", "month_startdate", "Schedule type")
	_ = create.MarkFlagRequired("name")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel [handle]",
		Short: "Cancel a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.api.CancelPlan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plan)
		},
	})
	return cmd
}

func (a *app) invoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Manage invoices",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [id]",
		Short: "Show an invoice by id or handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invoice, err := a.api.GetInvoice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), invoice)
		},
	})

	var dueDate, paymentMethod string
	settle := &cobra.Command{
		Use:   "settle [handle]",
		Short: "Settle an authorized invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invoice, err := a.api.SettleInvoice(cmd.Context(), args[0], dueDate, paymentMethod)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), invoice)
		},
	}
	settle.Flags().StringVar(&dueDate, "due", "", "Due date (YYYY-MM-DD)")
	settle.Flags().StringVar(&paymentMethod, "payment-method", "", "Payment method id (default auto)")
	cmd.AddCommand(settle)

	var (
		invoice reepay.Invoice
		line    reepay.InvoiceLine
	)
	create := &cobra.Command{
		Use:   "create [subscription] [handle]",
		Short: "Create a one-off invoice on a subscription",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			invoice.Handle = args[1]
			invoice.OrderLines = []reepay.InvoiceLine{line}
			created, err := a.api.CreateInvoice(cmd.Context(), args[0], invoice)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}
	create.Flags().StringVar(&line.Ordertext, "text", "", "Order line text")
	create.Flags().Int64Var(&line.Amount, "amount", 0, "Line amount in minor units")
	create.Flags().IntVar(&line.Quantity, "quantity", 1, "Line quantity")
	create.Flags().StringVar(&invoice.Currency, "currency", "", "Currency code")
	_ = create.MarkFlagRequired("text")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel [id]",
		Short: "Cancel an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invoice, err := a.api.CancelInvoice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), invoice)
		},
	})
	return cmd
}

func (a *app) webhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Inspect webhook deliveries",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "requests [id]",
		Short: "List the delivery attempts of a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := a.api.GetWebhookRequests(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, r := range requests {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-10s %3d %s\n", r.Created, r.State, r.Status, r.URL)
			}
			return nil
		},
	})
	return cmd
}

func (a *app) callbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callback",
		Short: "Drive the payment callback worker",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "enqueue [order-id] [invoice-handle]",
		Short: "Queue an order for reconciliation by the callback worker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, closeQueue, err := a.openQueue(a.cfg)
			if err != nil {
				return err
			}
			defer closeQueue()

			item := domain.CallbackItem{OrderID: args[0], InvoiceHandle: args[1]}
			if err := queue.Enqueue(cmd.Context(), item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued order %s (%s)\n", item.OrderID, item.InvoiceHandle)
			return nil
		},
	})
	return cmd
}

func (a *app) subscriptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Manage subscriptions",
	}
	cmd.AddCommand(showCmd(a, "get [handle]", "Show a subscription", (*reepay.API).GetSubscription))

	var sub reepay.Subscription
	create := &cobra.Command{
		Use:   "create [handle]",
		Short: "Subscribe a customer to a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub.Handle = args[0]
			created, err := a.api.CreateSubscription(cmd.Context(), sub)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}
	create.Flags().StringVar(&sub.Customer, "customer", "", "Customer handle")
	create.Flags().StringVar(&sub.Plan, "plan", "", "Plan handle")
	create.Flags().StringVar(&sub.Source, "source", "", "Payment method id")
	create.Flags().StringVar(&sub.SignupMethod, "signup-method", "source", "Signup method")
	create.Flags().StringVar(&sub.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	_ = create.MarkFlagRequired("customer")
	_ = create.MarkFlagRequired("plan")
	cmd.AddCommand(create)

	cmd.AddCommand(showCmd(a, "cancel [handle]", "Cancel a subscription at the end of its period", (*reepay.API).CancelSubscription))
	return cmd
}

func (a *app) addOnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addon",
		Short: "Manage plan add-ons",
	}
	cmd.AddCommand(showCmd(a, "get [handle]", "Show an add-on", (*reepay.API).GetAddOn))

	var addOn reepay.AddOn
	flags := func(c *cobra.Command) {
		c.Flags().StringVar(&addOn.Name, "name", "", "Add-on name")
		c.Flags().StringVar(&addOn.Description, "description", "", "Add-on description")
		c.Flags().Int64Var(&addOn.Amount, "amount", 0, "Amount in minor units")
		c.Flags().StringVar(&addOn.Type, "type", "on_off", "Add-on type (on_off or quantity)")
		_ = c.MarkFlagRequired("name")
	}

	create := &cobra.Command{
		Use:   "create [handle]",
		Short: "Create an add-on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addOn.Handle = args[0]
			created, err := a.api.CreateAddOn(cmd.Context(), addOn)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}
	flags(create)
	cmd.AddCommand(create)

	update := &cobra.Command{
		Use:   "update [handle]",
		Short: "Replace an add-on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addOn.Handle = args[0]
			updated, err := a.api.UpdateAddOn(cmd.Context(), args[0], addOn)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), updated)
		},
	}
	flags(update)
	cmd.AddCommand(update)

	cmd.AddCommand(showCmd(a, "delete [handle]", "Delete an add-on", (*reepay.API).DeleteAddOn))
	return cmd
}

// showCmd builds a single-argument command that prints what fn returns.
// fn is a method expression so it runs against the API built at startup.
func showCmd[T any](a *app, use, short string, fn func(*reepay.API, context.Context, string) (T, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := fn(a.api, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}
