package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/jlcastillov/crm-console/internal/auth"
	"github.com/jlcastillov/crm-console/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo users, companies and follow-ups into the database",
	Long: `Seed a demo data set into the SQLite database: three users (one per
role), a handful of companies and follow-ups spread over the current
week, plus closed sales and notifications. Useful for trying the
console locally.

Demo credentials: admin/admin, supervisor/supervisor, ejecutivo/ejecutivo.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()

	logger := log.New(cmd.OutOrStdout(), "[seed] ", log.LstdFlags)
	logger.Println("Seeding demo data...")

	st, err := store.NewStore(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	users := []struct {
		u        store.User
		password string
	}{
		{store.User{Login: "admin", FirstName: "Ana", PaternalName: "Torres", Email: "ana.torres@example.com", Phone: "987654321", ProfileID: auth.RoleAdmin}, "admin"},
		{store.User{Login: "supervisor", FirstName: "Marco", PaternalName: "Quispe", Email: "marco.quispe@example.com", Phone: "987654322", ProfileID: auth.RoleSupervisor}, "supervisor"},
		{store.User{Login: "ejecutivo", FirstName: "Lucía", PaternalName: "Rojas", Email: "lucia.rojas@example.com", Phone: "987654323", ProfileID: auth.RoleExecutive}, "ejecutivo"},
	}

	userIDs := make(map[string]int64)
	for _, entry := range users {
		id, err := st.CreateUser(ctx, &entry.u, entry.password)
		if err != nil {
			logger.Printf("Skipping user %s: %v", entry.u.Login, err)
			continue
		}
		userIDs[entry.u.Login] = id
		logger.Printf("Created user %s (id=%d)", entry.u.Login, id)
	}

	execID := userIDs["ejecutivo"]
	supID := userIDs["supervisor"]

	companies := []store.Company{
		{CommercialName: "Distribuidora Andina", LegalName: "Distribuidora Andina S.A.C.", RUC: "20100123456", HeadOffice: "Lima", Address: "Av. Arequipa 1250", ContactName: "Jorge Paredes", ContactRole: "Gerente de compras", ContactEmail: "jparedes@andina.pe", ContactPhone: "998877665", ClientType: "CORPORATIVO", BusinessLine: "DISTRIBUCIÓN", Workers: 120, CreatedBy: execID},
		{CommercialName: "Textiles del Sur", LegalName: "Textiles del Sur E.I.R.L.", RUC: "20487654321", HeadOffice: "Arequipa", Address: "Calle Mercaderes 310", ContactName: "María Gamarra", ContactRole: "Administradora", ContactEmail: "mgamarra@textilsur.pe", ContactPhone: "987123456", ClientType: "PYME", BusinessLine: "MANUFACTURA", Workers: 35, CreatedBy: execID},
		{CommercialName: "Agroexport Norte", LegalName: "Agroexport Norte S.A.", RUC: "20365478912", HeadOffice: "Trujillo", Address: "Av. España 980", ContactName: "Carlos Ruiz", ContactRole: "Gerente general", ContactEmail: "cruiz@agronorte.pe", ContactPhone: "956789123", ClientType: "CORPORATIVO", BusinessLine: "AGROINDUSTRIA", Workers: 240, CreatedBy: execID},
		{CommercialName: "Ferretería El Tornillo", LegalName: "Comercial El Tornillo S.R.L.", RUC: "20519876543", HeadOffice: "Lima", Address: "Jr. Paruro 540", ContactName: "Rosa Mendoza", ContactRole: "Dueña", ContactEmail: "rmendoza@eltornillo.pe", ContactPhone: "945612378", ClientType: "PYME", BusinessLine: "COMERCIO", Workers: 8, CreatedBy: execID},
	}

	companyIDs := make([]int64, 0, len(companies))
	for i := range companies {
		id, err := st.CreateCompany(ctx, &companies[i])
		if err != nil {
			logger.Printf("Failed to create company %s: %v", companies[i].CommercialName, err)
			continue
		}
		companyIDs = append(companyIDs, id)
	}
	logger.Printf("Created %d companies", len(companyIDs))

	if len(companyIDs) == 0 {
		return nil
	}

	now := time.Now()
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format("2006-01-02") }

	followups := []store.FollowUp{
		{CompanyID: companyIDs[0], AssignedUserID: execID, AssignerUserID: supID, Type: "LLAMADA", Priority: "ALTA", ScheduledDate: day(0), ScheduledTime: "09:30", Status: "PENDIENTE", Budget: 15000, Notes: "Renovación de contrato anual"},
		{CompanyID: companyIDs[0], AssignedUserID: execID, Type: "VISITA", Priority: "MEDIA", ScheduledDate: day(-3), ScheduledTime: "11:00", Status: "COMPLETADO", Result: "Interesados en ampliar línea", Budget: 8000},
		{CompanyID: companyIDs[1], AssignedUserID: execID, Type: "CORREO", Priority: "BAJA", ScheduledDate: day(-5), ScheduledTime: "15:00", Status: "PENDIENTE", Notes: "Enviar cotización de telas"},
		{CompanyID: companyIDs[2], AssignedUserID: execID, AssignerUserID: supID, Type: "VISITA", Priority: "ALTA", ScheduledDate: day(1), ScheduledTime: "10:00", Status: "PENDIENTE", Budget: 22000, Notes: "Presentar propuesta de financiamiento"},
		{CompanyID: companyIDs[3], AssignedUserID: execID, Type: "LLAMADA", Priority: "MEDIA", ScheduledDate: day(-1), ScheduledTime: "16:30", Status: "CANCELADO", Result: "Cliente pospuso la reunión"},
	}
	for i := range followups {
		if _, err := st.CreateFollowUp(ctx, &followups[i]); err != nil {
			logger.Printf("Failed to create follow-up: %v", err)
		}
	}
	logger.Printf("Created %d follow-ups", len(followups))

	sales := []store.ClosedSale{
		{CompanyID: companyIDs[0], Service: "Crédito capital de trabajo", Amount: 45000, ClosedDate: day(-2), DaysToClose: 12, UserID: execID},
		{CompanyID: companyIDs[2], Service: "Leasing vehicular", Amount: 78000, ClosedDate: day(-1), DaysToClose: 20, UserID: execID},
	}
	for i := range sales {
		if _, err := st.CreateClosedSale(ctx, &sales[i]); err != nil {
			logger.Printf("Failed to create closed sale: %v", err)
		}
	}

	notifications := []store.Notification{
		{UserID: execID, Title: "Nueva asignación", Message: "El supervisor te asignó un seguimiento con Agroexport Norte", Type: "Info"},
		{UserID: execID, Title: "Recordatorio", Message: "Tienes seguimientos pendientes de la semana pasada", Type: "Warning"},
	}
	for i := range notifications {
		if _, err := st.CreateNotification(ctx, &notifications[i]); err != nil {
			logger.Printf("Failed to create notification: %v", err)
		}
	}

	logger.Println("Demo data ready. Try: crm-console tui (ejecutivo/ejecutivo)")
	return nil
}
