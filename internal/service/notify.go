package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wneessen/go-mail"

	"crystalenergy-backend/internal/config"
	"crystalenergy-backend/internal/model"
	"crystalenergy-backend/internal/repository"
)

const (
	consultationReadySubject = "Your Feng Shui Consultation is Ready - CrystalEnergy.com"
	orderConfirmationSubject = "Order Confirmation - CrystalEnergy.com"
)

// EmailNotifier delivers completion emails. Every attempt, delivered or not,
// leaves an EmailLog row; a send failure is logged and swallowed so it can
// never poison payment processing.
type EmailNotifier struct {
	cfg           config.Email
	frontendURL   string
	customers     repository.CustomerRepository
	consultations repository.ConsultationRepository
	emailLogs     repository.EmailLogRepository
}

func NewEmailNotifier(
	cfg config.Email,
	frontendURL string,
	customers repository.CustomerRepository,
	consultations repository.ConsultationRepository,
	emailLogs repository.EmailLogRepository,
) *EmailNotifier {
	return &EmailNotifier{
		cfg:           cfg,
		frontendURL:   frontendURL,
		customers:     customers,
		consultations: consultations,
		emailLogs:     emailLogs,
	}
}

func (n *EmailNotifier) NotifyOrderCompleted(ctx context.Context, order *model.Order) {
	customer, err := n.customers.FindByID(ctx, order.CustomerID)
	if err != nil {
		log.Printf("completion email for order %s: load customer: %v", order.ID, err)
		return
	}

	switch order.Type {
	case model.OrderTypeConsultation:
		n.sendConsultationReady(ctx, order, customer)
	default:
		n.sendOrderConfirmation(ctx, order, customer)
	}
}

func (n *EmailNotifier) sendConsultationReady(ctx context.Context, order *model.Order, customer *model.Customer) {
	consultation, err := n.consultations.FindByOrderID(ctx, order.ID)
	if err != nil {
		log.Printf("consultation email for order %s: %v", order.ID, err)
		return
	}
	if consultation.AIResult == "" {
		n.appendLog(ctx, consultation.ID, customer.Email, consultationReadySubject, model.EmailFailed, "consultation result not available")
		return
	}

	html := consultationReadyHTML(customer.Name, consultation.AIResult, n.frontendURL)
	text := consultationReadyText(customer.Name, consultation.AIResult, n.frontendURL)

	if err := n.send(ctx, customer.Email, consultationReadySubject, html, text); err != nil {
		log.Printf("consultation email to %s failed: %v", customer.Email, err)
		n.appendLog(ctx, consultation.ID, customer.Email, consultationReadySubject, model.EmailFailed, err.Error())
		return
	}

	n.appendLog(ctx, consultation.ID, customer.Email, consultationReadySubject, model.EmailSent, "")
	if err := n.consultations.MarkEmailSent(ctx, consultation.ID); err != nil {
		log.Printf("mark consultation %s email sent: %v", consultation.ID, err)
	}
	n.notifyAdmin(ctx, "New Consultation - CrystalEnergy.com",
		fmt.Sprintf("New consultation: %s\nCustomer: %s", consultation.Type, customer.Name))
}

func (n *EmailNotifier) sendOrderConfirmation(ctx context.Context, order *model.Order, customer *model.Customer) {
	address := ""
	if meta, err := model.DecodeOrderMetadata(order.Metadata); err == nil && meta.Product != nil {
		a := meta.Product.ShippingAddress
		address = fmt.Sprintf("%s, %s %s, %s", a.Street, a.PostalCode, a.City, a.Country)
	}

	html := orderConfirmationHTML(customer.Name, order.ID, order.Amount, address)

	if err := n.send(ctx, customer.Email, orderConfirmationSubject, html, ""); err != nil {
		log.Printf("order confirmation to %s failed: %v", customer.Email, err)
		n.appendLog(ctx, "", customer.Email, orderConfirmationSubject, model.EmailFailed, err.Error())
		return
	}

	n.appendLog(ctx, "", customer.Email, orderConfirmationSubject, model.EmailSent, "")
	n.notifyAdmin(ctx, "New Order - CrystalEnergy.com",
		fmt.Sprintf("New order received: %s\nCustomer: %s\nTotal: $%s", order.ID, customer.Name, formatMoney(order.Amount)))
}

// NotifyDispute alerts the admin that a completed order got disputed.
func (n *EmailNotifier) NotifyDispute(ctx context.Context, orderID string) {
	n.notifyAdmin(ctx, "Payment Dispute - Action Required",
		fmt.Sprintf("Payment dispute created for order: %s", orderID))
}

func (n *EmailNotifier) notifyAdmin(ctx context.Context, subject, body string) {
	to := n.cfg.AdminTo
	if to == "" {
		to = n.cfg.User
	}
	if to == "" {
		return
	}
	if err := n.send(ctx, to, subject, "", body); err != nil {
		log.Printf("admin notification %q failed: %v", subject, err)
	}
}

func (n *EmailNotifier) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if !n.configured() {
		// demo mode, count it as delivered like a real send
		log.Printf("email not configured, demo mode: would send %q to %s", subject, to)
		return nil
	}

	from := n.cfg.From
	if from == "" {
		from = n.cfg.User
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat("CrystalEnergy.com", from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	if htmlBody != "" {
		msg.SetBodyString(mail.TypeTextHTML, htmlBody)
		if textBody != "" {
			msg.AddAlternativeString(mail.TypeTextPlain, textBody)
		}
	} else {
		msg.SetBodyString(mail.TypeTextPlain, textBody)
	}

	c, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.User),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}

func (n *EmailNotifier) configured() bool {
	return n.cfg.User != "" && n.cfg.Password != ""
}

func (n *EmailNotifier) appendLog(ctx context.Context, consultationID, recipient, subject, status, errMsg string) {
	now := time.Now()
	entry := &model.EmailLog{
		ID:             uuid.NewString(),
		ConsultationID: consultationID,
		Recipient:      recipient,
		Subject:        subject,
		Status:         status,
		Error:          errMsg,
	}
	if status == model.EmailSent {
		entry.SentAt = &now
	}
	if err := n.emailLogs.Append(ctx, entry); err != nil {
		log.Printf("append email log for %s: %v", recipient, err)
	}
}

func formatMoney(minorUnits int64) string {
	return decimal.NewFromInt(minorUnits).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func consultationReadyHTML(customerName, result, frontendURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Your Feng Shui Consultation</title>
</head>
<body style="font-family: Georgia, serif; line-height: 1.6; color: #333; margin: 0; padding: 0; background-color: #f9f9f9;">
  <div style="max-width: 600px; margin: 0 auto; background: white;">
    <div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 40px 30px; text-align: center;">
      <div style="font-size: 24px; font-weight: bold; margin-bottom: 10px;">CrystalEnergy.com</div>
      <h1 style="margin: 0; font-size: 28px;">Your Personal Feng Shui Consultation</h1>
      <p>Prepared with wisdom and ancient knowledge</p>
    </div>
    <div style="padding: 40px 30px;">
      <p>Dear %s,</p>
      <p>Thank you for choosing CrystalEnergy.com for your feng shui consultation. Your personalized reading has been carefully prepared.</p>
      <div style="background: #f8f9fa; padding: 30px; border-radius: 12px; margin: 20px 0; border-left: 4px solid #667eea;">
        <h2 style="color: #667eea; margin-top: 0;">Your Personal Feng Shui Reading</h2>
        <pre style="white-space: pre-wrap; font-family: Georgia, serif; font-size: 16px; line-height: 1.7;">%s</pre>
      </div>
      <div style="background: #e8f4fd; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #3498db;">
        <h3>How to Use This Reading</h3>
        <ul>
          <li>Read through your consultation 2-3 times to fully absorb the guidance</li>
          <li>Implement the suggested changes gradually over 2-4 weeks</li>
          <li>Keep this email for future reference as you make adjustments</li>
          <li>Trust your intuition about what feels right for your space</li>
        </ul>
        <p><a href="%s#products">Browse our complete crystal collection</a></p>
      </div>
      <p>May your journey be filled with harmony, abundance, and positive energy.</p>
      <p>With gratitude,<br><strong>The CrystalEnergy.com Team</strong></p>
    </div>
    <div style="background: #2c3e50; color: white; padding: 30px; text-align: center; font-size: 14px;">
      <p><strong>CrystalEnergy.com</strong> - Ancient Wisdom for Modern Living</p>
      <p style="font-size: 12px; color: #95a5a6; margin-top: 20px;">
        This consultation was generated using advanced AI trained on traditional feng shui principles.
        For entertainment and guidance purposes. Individual results may vary.
      </p>
    </div>
  </div>
</body>
</html>`, customerName, result, frontendURL)
}

func consultationReadyText(customerName, result, frontendURL string) string {
	return fmt.Sprintf(`Your Feng Shui Consultation - CrystalEnergy.com

Dear %s,

Thank you for choosing CrystalEnergy.com for your feng shui consultation. Your personalized reading has been carefully prepared.

YOUR PERSONAL FENG SHUI READING:
%s

HOW TO USE THIS READING:
- Read through your consultation 2-3 times to fully absorb the guidance
- Implement the suggested changes gradually over 2-4 weeks
- Keep this email for future reference as you make adjustments
- Trust your intuition about what feels right for your space

Browse our complete collection at: %s#products

May your journey be filled with harmony, abundance, and positive energy.

With gratitude,
The CrystalEnergy.com Team
`, customerName, result, frontendURL)
}

func orderConfirmationHTML(customerName, orderID string, total int64, shippingAddress string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Georgia, serif; line-height: 1.6; color: #333; margin: 0; padding: 0; background-color: #f9f9f9;">
  <div style="max-width: 600px; margin: 0 auto; background: white;">
    <div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 30px; text-align: center;">
      <h1>Order Confirmed!</h1>
      <p>Thank you for your purchase</p>
    </div>
    <div style="padding: 30px;">
      <p>Dear %s,</p>
      <p>Your order has been confirmed and will be prepared with love and care.</p>
      <div style="background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
        <h3>Order #%s</h3>
        <p><strong>Total:</strong> $%s</p>
        <p><strong>Shipping Address:</strong><br>%s</p>
      </div>
      <p>You will receive a shipping notification once your crystals are on their way.</p>
      <p>With gratitude,<br>The CrystalEnergy.com Team</p>
    </div>
    <div style="background: #2c3e50; color: white; padding: 20px; text-align: center; font-size: 14px;">
      <p>CrystalEnergy.com - Ancient Wisdom for Modern Living</p>
    </div>
  </div>
</body>
</html>`, customerName, orderID, formatMoney(total), shippingAddress)
}
