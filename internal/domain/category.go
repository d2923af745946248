package domain

// CashCategory is the cash-register category vocabulary.
type CashCategory string

const (
	CashCatSale         CashCategory = "venta"
	CashCatDebtRecovery CashCategory = "cobro_deuda"
	CashCatCapital      CashCategory = "aporte_capital"
	CashCatRawMaterial  CashCategory = "compra_materia_prima"
	CashCatUtilities    CashCategory = "pago_servicios"
	CashCatPayroll      CashCategory = "pago_planilla"
	CashCatTaxes        CashCategory = "pago_impuestos"
	CashCatOther        CashCategory = "otros"
)

// BankCategory is the bank-ledger category vocabulary.
type BankCategory string

const (
	BankCatCustomerCollection BankCategory = "cobro_cliente"
	BankCatDeposit            BankCategory = "deposito"
	BankCatSupplierPayment    BankCategory = "pago_proveedor"
	BankCatUtilities          BankCategory = "pago_servicios"
	BankCatPayroll            BankCategory = "pago_planilla"
	BankCatTaxes              BankCategory = "pago_impuestos"
	BankCatTransfer           BankCategory = "transferencia"
	BankCatLoanDisbursement   BankCategory = "desembolso_prestamo"
	BankCatLoanCollection     BankCategory = "cobro_prestamo"
	BankCatExtraIncome        BankCategory = "ingreso_extra"
	BankCatExtraExpense       BankCategory = "egreso_extra"
)

// MapCashCategory translates a cash-side category into the bank-side
// vocabulary. Unmapped categories fall back to the generic bucket for the
// movement direction; the mapping never fails.
func MapCashCategory(cat CashCategory, typ CashMovementType) BankCategory {
	switch cat {
	case CashCatSale, CashCatDebtRecovery:
		return BankCatCustomerCollection
	case CashCatCapital:
		return BankCatDeposit
	case CashCatRawMaterial:
		return BankCatSupplierPayment
	case CashCatUtilities:
		return BankCatUtilities
	case CashCatPayroll:
		return BankCatPayroll
	case CashCatTaxes:
		return BankCatTaxes
	default:
		if typ == CashIncome {
			return BankCatExtraIncome
		}
		return BankCatExtraExpense
	}
}
