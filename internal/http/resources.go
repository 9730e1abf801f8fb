package httpx

import (
	"github.com/vetdesk/vetdesk/internal/domain/model"
	"github.com/vetdesk/vetdesk/internal/service"
)

func customerAPI(s *service.CustomerService) resourceAPI[*model.Customer, model.CreateCustomerRequest, model.UpdateCustomerRequest] {
	return resourceAPI[*model.Customer, model.CreateCustomerRequest, model.UpdateCustomerRequest]{
		ListKey: "customers",
		Create:  s.Create,
		Get:     s.Get,
		List:    s.List,
		Update:  s.Update,
		Delete:  s.Delete,
	}
}

func productAPI(s *service.CatalogService) resourceAPI[*model.Product, model.ProductRequest, model.UpdateProductRequest] {
	return resourceAPI[*model.Product, model.ProductRequest, model.UpdateProductRequest]{
		ListKey: "products",
		Create:  s.CreateProduct,
		Get:     s.GetProduct,
		List:    s.ListProducts,
		Update:  s.UpdateProduct,
		Delete:  s.DeleteProduct,
	}
}

func categoryAPI(s *service.CatalogService) resourceAPI[*model.Category, model.CategoryRequest, model.UpdateCategoryRequest] {
	return resourceAPI[*model.Category, model.CategoryRequest, model.UpdateCategoryRequest]{
		ListKey: "categories",
		Create:  s.CreateCategory,
		Get:     s.GetCategory,
		List:    s.ListCategories,
		Update:  s.UpdateCategory,
		Delete:  s.DeleteCategory,
	}
}

func clinicServiceAPI(
	s *service.CatalogService,
) resourceAPI[*model.ClinicService, model.ClinicServiceRequest, model.UpdateClinicServiceRequest] {
	return resourceAPI[*model.ClinicService, model.ClinicServiceRequest, model.UpdateClinicServiceRequest]{
		ListKey: "services",
		Create:  s.CreateService,
		Get:     s.GetService,
		List:    s.ListServices,
		Update:  s.UpdateService,
		Delete:  s.DeleteService,
	}
}

func invoiceAPI(s *service.InvoiceService) resourceAPI[*model.Invoice, model.CreateInvoiceRequest, model.UpdateInvoiceRequest] {
	return resourceAPI[*model.Invoice, model.CreateInvoiceRequest, model.UpdateInvoiceRequest]{
		ListKey: "invoices",
		Create:  s.Create,
		Get:     s.Get,
		List:    s.List,
		Update:  s.Update,
		Delete:  s.Delete,
	}
}

func diagnoseAPI(
	s *service.DiagnoseService,
) resourceAPI[*model.Diagnose, model.CreateDiagnoseRequest, model.UpdateDiagnoseRequest] {
	return resourceAPI[*model.Diagnose, model.CreateDiagnoseRequest, model.UpdateDiagnoseRequest]{
		ListKey: "diagnoses",
		Create:  s.Create,
		Get:     s.Get,
		List:    s.List,
		Update:  s.Update,
		Delete:  s.Delete,
	}
}

func userAPI(s *service.UserService) resourceAPI[*model.User, model.CreateUserRequest, model.UpdateUserRequest] {
	return resourceAPI[*model.User, model.CreateUserRequest, model.UpdateUserRequest]{
		ListKey: "users",
		Create:  s.Create,
		Get:     s.Get,
		List:    s.List,
		Update:  s.Update,
		Delete:  s.Delete,
	}
}
