package services

import "github.com/EO-DataHub/eodhp-user-services/models"

const passwordCredential = "password"

// toProviderUser maps a validated create request onto the identity provider's
// user representation with a single non-temporary password credential.
func toProviderUser(req models.UserRequest) models.User {
	return models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Enabled:   true,
		Credentials: []models.Credential{
			{
				Type:      passwordCredential,
				Value:     req.Password,
				Temporary: false,
			},
		},
	}
}

// toUserResponse assembles the API response from a provider user and its
// resolved roles and groups, preserving the provider's ordering.
func toUserResponse(user *models.User, roles []models.Role, groups []models.Group) *models.UserResponse {
	resp := &models.UserResponse{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Roles:     make([]string, 0, len(roles)),
		Groups:    make([]string, 0, len(groups)),
	}
	for _, role := range roles {
		resp.Roles = append(resp.Roles, role.Name)
	}
	for _, group := range groups {
		resp.Groups = append(resp.Groups, group.Name)
	}
	return resp
}
